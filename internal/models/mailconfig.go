// Package models содержит доменную модель почтовой конфигурации пользователя.
package models

// Провайдеры исходящей почты.
const (
	MailProviderGmail = "gmail"
	MailProviderSMTP  = "smtp"
)

// EmailTemplate — встроенный в конфигурацию шаблон письма-напоминания.
// Кастомные строки содержат плейсхолдеры вида {{clientName}}.
type EmailTemplate struct {
	UseCustomTemplate bool   `json:"use_custom_template"`
	CustomSubject     string `json:"custom_subject"`
	CustomContent     string `json:"custom_content"`
}

// MailConfig — настройка исходящей почты, ровно одна на пользователя.
// Для провайдера gmail заполняются токены OAuth2, для smtp — хост,
// порт и зашифрованный пароль.
type MailConfig struct {
	ID           int    // Идентификатор записи
	UserUID      string // Владелец конфигурации (уникальный)
	Provider     string // gmail или smtp
	RefreshToken string // OAuth2 refresh-токен (gmail)
	AccessToken  string // Последний известный access-токен (gmail)
	Host         string // SMTP-хост
	Port         int    // SMTP-порт
	Secure       bool   // Implicit TLS вместо STARTTLS
	Username     string // Адрес учётной записи, он же отправитель
	Password     string // Пароль, зашифрованный secrets.Box
	IsConfigured bool   // Конфигурация пригодна для отправки
	EmailTemplate
}

// DummySMTPConfig используется для приёма SMTP-настроек из JSON-запроса.
// Пароль приходит открытым текстом и шифруется перед сохранением.
type DummySMTPConfig struct {
	Host   string `json:"host" validate:"required"`
	Port   int    `json:"port" validate:"required,gt=0,lte=65535"`
	Secure bool   `json:"secure"`
	User   string `json:"user" validate:"required,email"`
	Pass   string `json:"pass" validate:"required"`
}

// DummyGmailConfig используется для сохранения OAuth2-данных Gmail.
type DummyGmailConfig struct {
	User         string `json:"user" validate:"required,email"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// DummyTemplate используется для обновления шаблона письма.
type DummyTemplate struct {
	UseCustomTemplate bool   `json:"use_custom_template"`
	CustomSubject     string `json:"custom_subject"`
	CustomContent     string `json:"custom_content"`
}
