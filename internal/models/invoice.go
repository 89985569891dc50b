// Package models содержит доменные структуры счета,
// а также вспомогательные типы для работы с данными из внешних источников (JSON-запросы).
package models

import "time"

// Статусы счета. Переходы между статусами не ограничены:
// любое значение из списка можно установить при обновлении.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Invoice представляет собой счет, принадлежащий ровно одному пользователю.
type Invoice struct {
	ID          int       // Идентификатор счета
	UserUID     string    // Владелец счета
	ClientName  string    // Имя клиента
	ClientEmail string    // Электронная почта клиента
	Amount      float64   // Сумма счета без привязки к валюте
	DueDate     time.Time // Срок оплаты
	Status      string    // Статус: unpaid, paid или overdue
	CreatedAt   time.Time // Дата создания
}

// DummyInvoice используется для приёма данных счета из JSON-запроса,
// прежде чем конвертировать их в Invoice.
// Дата приходит в виде строки в формате 2006-01-02.
type DummyInvoice struct {
	ClientName  string  `json:"client_name" validate:"required"`
	ClientEmail string  `json:"client_email" validate:"required,email"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status      string  `json:"status" validate:"omitempty,oneof=unpaid paid overdue"`
}

// DueInvoiceSummary — краткое представление просроченного счета
// с отформатированными полями для внешних интеграций.
type DueInvoiceSummary struct {
	InvoiceID   int    `json:"invoice_id"`
	ClientName  string `json:"client_name"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	DaysOverdue int    `json:"days_overdue"`
}
