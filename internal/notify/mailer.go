// Package notify delivers the merchant's order notification email.
//
// Delivery is strictly best-effort: incomplete configuration disables the
// dispatcher for the life of the process, and send failures are logged and
// swallowed. Nothing here ever influences the HTTP response.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/chemabeez/honey-orders/internal/orderapi/core/domain/entity"
	"github.com/chemabeez/honey-orders/internal/orderapi/core/ports"
)

// Config carries the SMTP relay settings. To falls back to Username when
// no explicit destination is configured.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	To       string
}

// Mailer sends order summaries over authenticated SMTP.
type Mailer struct {
	enabled bool
	from    string
	to      string
	send    func(*gomail.Message) error
}

var _ ports.Notifier = (*Mailer)(nil)

// New resolves the configuration once. A Mailer built from incomplete
// credentials is permanently disabled and Notify becomes a no-op.
func New(cfg Config) *Mailer {
	if cfg.To == "" {
		cfg.To = cfg.Username
	}

	enabled := cfg.Host != "" && cfg.Port > 0 && cfg.Username != "" && cfg.Password != "" && cfg.To != ""
	if !enabled {
		slog.Warn("email not fully configured; order notifications disabled")
		return &Mailer{}
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		enabled: true,
		from:    cfg.Username,
		to:      cfg.To,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// Notify composes and sends the order summary. One attempt, no retry;
// failures are logged and never surfaced to the caller.
func (m *Mailer) Notify(ctx context.Context, order *entity.OrderSubmission) {
	if !m.enabled {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", "New Honey Order from "+order.Name)
	msg.SetBody("text/plain", FormatBody(order))

	if err := m.send(msg); err != nil {
		slog.ErrorContext(ctx, "order notification email failed",
			"submission_id", order.ID,
			"error", err,
		)
		return
	}

	slog.InfoContext(ctx, "order notification email sent", "submission_id", order.ID)
}

// FormatBody renders the deterministic plain-text summary: identity,
// product, delivery, payment, and notes blocks separated by blank lines.
func FormatBody(order *entity.OrderSubmission) string {
	amount := "N/A"
	if order.Amount > 0 {
		amount = strconv.FormatFloat(order.Amount, 'f', -1, 64)
	}

	notes := order.Notes
	if notes == "" {
		notes = "None"
	}

	lines := []string{
		fmt.Sprintf("New honey order from %s", order.Name),
		"",
		fmt.Sprintf("Name: %s", order.Name),
		fmt.Sprintf("Email: %s", order.Email),
		fmt.Sprintf("Phone: %s", order.Phone),
		"",
		fmt.Sprintf("Jar size: %s", order.JarSize),
		fmt.Sprintf("Quantity: %s", order.Quantity),
		"",
		fmt.Sprintf("Preferred delivery date: %s", order.DeliveryDate),
		fmt.Sprintf("Preferred delivery time: %s", order.DeliveryTime),
		fmt.Sprintf("Delivery location: %s", order.Location),
		"",
		fmt.Sprintf("Payment method: %s", order.PaymentMethod),
		fmt.Sprintf("Amount to charge (if M-Pesa): %s", amount),
		"",
		fmt.Sprintf("Notes: %s", notes),
	}

	return strings.Join(lines, "\n")
}
