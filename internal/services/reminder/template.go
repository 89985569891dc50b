// Package reminder реализует рендеринг и рассылку платёжных напоминаний.
package reminder

import (
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// CurrencySymbol — фиксированный символ валюты для отображения сумм.
const CurrencySymbol = "₹"

// RenderedMail — результат рендеринга шаблона: тема и HTML-содержимое письма.
type RenderedMail struct {
	Subject string
	Content string
}

// RenderReminder — чистая функция рендеринга письма-напоминания.
//
// Если в шаблоне включен кастомный режим и заполнены и тема, и содержимое,
// подставляются плейсхолдеры {{clientName}}, {{invoiceId}}, {{amount}},
// {{dueDate}}, {{daysOverdue}}, {{userName}}. Иначе используется
// стандартный шаблон. Пользовательский текст экранируется перед подстановкой.
func RenderReminder(tmpl models.EmailTemplate, invoice models.Invoice, user models.User, now time.Time) RenderedMail {
	clientName := html.EscapeString(invoice.ClientName)
	userName := html.EscapeString(user.Name)
	invoiceID := strconv.Itoa(invoice.ID)
	amount := formatAmount(invoice.Amount)
	dueDate := formatDate(invoice.DueDate)
	daysOverdue := DaysOverdue(invoice.DueDate, now)

	if tmpl.UseCustomTemplate && tmpl.CustomSubject != "" && tmpl.CustomContent != "" {
		return RenderedMail{
			Subject: substitute(tmpl.CustomSubject, clientName, invoiceID, amount, dueDate, daysOverdue, userName),
			Content: substitute(tmpl.CustomContent, clientName, invoiceID, amount, dueDate, daysOverdue, userName),
		}
	}

	subject := "Payment Reminder: Invoice #" + invoiceID + " for " + clientName +
		" — " + CurrencySymbol + amount + " due " + dueDate
	content := `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 8px;">
  <h2 style="color: #2c3e50;">Payment Reminder</h2>
  <p>Dear ` + clientName + `,</p>
  <p>This is a reminder that invoice <strong>#` + invoiceID + `</strong> for
  <strong>` + CurrencySymbol + amount + `</strong> was due on <strong>` + dueDate + `</strong>
  (` + strconv.Itoa(daysOverdue) + ` day(s) overdue).</p>
  <p>Please arrange the payment at your earliest convenience.</p>
  <p>Best regards,<br/>` + userName + `</p>
</div>`

	return RenderedMail{Subject: subject, Content: content}
}

// DaysOverdue возвращает число полных или начатых дней просрочки,
// не меньше нуля.
func DaysOverdue(dueDate, now time.Time) int {
	days := int(math.Ceil(now.Sub(dueDate).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// substitute подставляет значения в кастомный шаблон. Если в тексте символ
// валюты стоит непосредственно перед {{amount}}, подставляется голое число,
// иначе число получает префикс-символ. Так кастомный шаблон с собственным
// символом валюты не получает его дважды.
func substitute(text, clientName, invoiceID, amount, dueDate string, daysOverdue int, userName string) string {
	amountValue := CurrencySymbol + amount
	if strings.Contains(text, CurrencySymbol+"{{amount}}") {
		amountValue = amount
	}

	replacer := strings.NewReplacer(
		"{{clientName}}", clientName,
		"{{invoiceId}}", invoiceID,
		"{{amount}}", amountValue,
		"{{dueDate}}", dueDate,
		"{{daysOverdue}}", strconv.Itoa(daysOverdue),
		"{{userName}}", userName,
	)
	return replacer.Replace(text)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// formatDate отображает дату в формате DD/MM/YYYY.
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
