package paymentprovider

// CreateOrderRequest запрос на создание разового заказа.
// Сумма передаётся в минимальных единицах валюты (пайсах).
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// OrderResponse ответ шлюза на создание заказа.
type OrderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// CreateSubscriptionRequest запрос на создание рекуррентной подписки по плану.
type CreateSubscriptionRequest struct {
	PlanID         string `json:"plan_id"`
	TotalCount     int    `json:"total_count"`
	CustomerNotify int    `json:"customer_notify"`
}

// SubscriptionResponse ответ шлюза на создание подписки.
type SubscriptionResponse struct {
	ID         string `json:"id"`
	PlanID     string `json:"plan_id"`
	Status     string `json:"status"`
	ShortURL   string `json:"short_url"`
	TotalCount int    `json:"total_count"`
	CreatedAt  int64  `json:"created_at"`
}
