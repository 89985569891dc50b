package models

import "time"

// WebhookSubscription — подписка платформы автоматизации на события
// пользователя. Хранится в базе, а не в памяти процесса, чтобы переживать
// перезапуски и работать за несколькими экземплярами сервера.
type WebhookSubscription struct {
	ID        int       // Идентификатор подписки
	UserUID   string    // Владелец подписки
	TargetURL string    // URL, на который отправляется payload
	CreatedAt time.Time // Дата создания
}

// DummyWebhookSubscribe используется для приёма URL хука из JSON-запроса.
type DummyWebhookSubscribe struct {
	HookURL string `json:"hook_url" validate:"required,url"`
}
