// Package models содержит доменную модель платной подписки пользователя на сервис.
package models

import "time"

// Тарифные планы.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Статусы подписки.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusTrial     = "trial"
)

// Subscription — биллинговая запись, одна на пользователя.
// Истечение пробного периода и оплаченного периода проверяется
// лениво при чтении, фонового процесса нет.
type Subscription struct {
	ID                    int        // Идентификатор записи
	UserUID               string     // Владелец подписки (уникальный)
	Plan                  string     // free, pro или enterprise
	Status                string     // active, cancelled, expired или trial
	CurrentPeriodStart    *time.Time // Начало оплаченного периода
	CurrentPeriodEnd      *time.Time // Конец оплаченного периода
	TrialEndDate          *time.Time // Конец пробного периода
	GatewayOrderID        string     // Идентификатор заказа в платёжном шлюзе
	GatewayPaymentID      string     // Идентификатор платежа в платёжном шлюзе
	GatewaySubscriptionID string     // Идентификатор рекуррентной подписки в шлюзе
	Amount                float64    // Сумма последнего платежа
	Currency              string     // Валюта платежа
	Interval              string     // Интервал списания: month или year
	CreatedAt             time.Time  // Дата создания записи
}
