package reminder

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

func TestRenderReminder_DefaultTemplate(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	invoice := models.Invoice{
		ID:         42,
		ClientName: "Acme Corp",
		Amount:     1500,
		DueDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:     models.InvoiceStatusUnpaid,
	}
	user := models.User{Name: "Ravi Kumar"}

	mail := RenderReminder(models.EmailTemplate{}, invoice, user, now)

	assert.Equal(t, "Payment Reminder: Invoice #42 for Acme Corp — ₹1500.00 due 10/03/2025", mail.Subject)
	assert.Contains(t, mail.Content, "Dear Acme Corp,")
	assert.Contains(t, mail.Content, "₹1500.00")
	assert.Contains(t, mail.Content, "10/03/2025")
	assert.Contains(t, mail.Content, "6 day(s) overdue")
	assert.Contains(t, mail.Content, "Ravi Kumar")
}

func TestRenderReminder_CustomTemplate(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	invoice := models.Invoice{
		ID:         7,
		ClientName: "Globex",
		Amount:     200.5,
		DueDate:    time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	user := models.User{Name: "Priya"}
	tmpl := models.EmailTemplate{
		UseCustomTemplate: true,
		CustomSubject:     "Invoice {{invoiceId}} for {{clientName}}",
		CustomContent:     "Hello {{clientName}}, {{amount}} was due {{dueDate}} ({{daysOverdue}} days ago). — {{userName}}",
	}

	mail := RenderReminder(tmpl, invoice, user, now)

	assert.Equal(t, "Invoice 7 for Globex", mail.Subject)
	assert.Equal(t, "Hello Globex, ₹200.50 was due 14/03/2025 (1 days ago). — Priya", mail.Content)
}

func TestRenderReminder_CustomTemplateFallsBackWhenIncomplete(t *testing.T) {
	now := time.Now()
	invoice := models.Invoice{ID: 1, ClientName: "Client", Amount: 10, DueDate: now}
	user := models.User{Name: "Owner"}

	tests := []struct {
		name string
		tmpl models.EmailTemplate
	}{
		{"flag off", models.EmailTemplate{CustomSubject: "s", CustomContent: "c"}},
		{"empty subject", models.EmailTemplate{UseCustomTemplate: true, CustomContent: "c"}},
		{"empty content", models.EmailTemplate{UseCustomTemplate: true, CustomSubject: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := RenderReminder(tt.tmpl, invoice, user, now)
			assert.True(t, strings.HasPrefix(mail.Subject, "Payment Reminder: Invoice #1"))
		})
	}
}

func TestRenderReminder_SmartCurrency(t *testing.T) {
	now := time.Now()
	invoice := models.Invoice{ID: 3, ClientName: "C", Amount: 99, DueDate: now}
	user := models.User{Name: "U"}

	withSymbol := models.EmailTemplate{
		UseCustomTemplate: true,
		CustomSubject:     "due",
		CustomContent:     "Amount: ₹{{amount}}",
	}
	mail := RenderReminder(withSymbol, invoice, user, now)
	assert.Equal(t, "Amount: ₹99.00", mail.Content)
	assert.NotContains(t, mail.Content, "₹₹")

	withoutSymbol := models.EmailTemplate{
		UseCustomTemplate: true,
		CustomSubject:     "due",
		CustomContent:     "Amount: {{amount}}",
	}
	mail = RenderReminder(withoutSymbol, invoice, user, now)
	assert.Equal(t, "Amount: ₹99.00", mail.Content)
}

func TestRenderReminder_EscapesUserSuppliedNames(t *testing.T) {
	now := time.Now()
	invoice := models.Invoice{
		ID:         5,
		ClientName: `<script>alert("x")</script>`,
		Amount:     1,
		DueDate:    now,
	}
	user := models.User{Name: "A & B"}
	tmpl := models.EmailTemplate{
		UseCustomTemplate: true,
		CustomSubject:     "{{clientName}}",
		CustomContent:     "{{clientName}} / {{userName}}",
	}

	mail := RenderReminder(tmpl, invoice, user, now)

	assert.NotContains(t, mail.Content, "<script>")
	assert.Contains(t, mail.Content, "&lt;script&gt;")
	assert.Contains(t, mail.Content, "A &amp; B")
}

func TestDaysOverdue(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		now  time.Time
		want int
	}{
		{"due in future", base.AddDate(0, 0, 5), base, 0},
		{"due today", base, base, 0},
		{"partial day counts as one", base, base.Add(6 * time.Hour), 1},
		{"three full days", base, base.AddDate(0, 0, 3), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysOverdue(tt.due, tt.now))
		})
	}
}
