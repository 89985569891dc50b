// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и настройки напоминаний.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта (уникальная)
	Name             string     // Отображаемое имя
	GoogleID         string     // Идентификатор внешней учётной записи Google, пустой для локальных
	PasswordHash     string     // Хэш пароля, пустой для внешних учётных записей
	Photo            string     // URL фотографии профиля
	SendReminders    bool       // Включена ли периодическая рассылка напоминаний
	LastReminderSent *time.Time // Время последнего запуска рассылки для пользователя
	CreatedAt        time.Time  // Дата регистрации
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyProfileUpdate используется для обновления профиля.
type DummyProfileUpdate struct {
	Name  string `json:"name" validate:"required"`
	Photo string `json:"photo" validate:"omitempty,url"`
}

// DummyPasswordChange используется для смены пароля.
type DummyPasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
