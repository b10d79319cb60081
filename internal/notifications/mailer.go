package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

// Mailer sends order confirmations over SMTP: one mail to the customer and
// one to the merchant's orders inbox.
type Mailer struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Mailer{
		cfg:  cfg,
		logg: logg,
		send: smtp.SendMail,
	}, nil
}

func (m *Mailer) OrderCreated(ctx context.Context, order Order) error {
	if !m.cfg.Enabled() {
		m.logg.Info(ctx, "smtp disabled, skipping order notification")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	customerMsg := m.compose(order.Email, customerSubject, customerBody(order))
	if err := m.send(addr, auth, m.cfg.Username, []string{order.Email}, customerMsg); err != nil {
		return fmt.Errorf("sending customer mail: %w", err)
	}

	merchantMsg := m.compose(m.cfg.OrdersInbox, merchantSubject(order), merchantBody(order))
	if err := m.send(addr, auth, m.cfg.Username, []string{m.cfg.OrdersInbox}, merchantMsg); err != nil {
		return fmt.Errorf("sending merchant mail: %w", err)
	}
	return nil
}

const customerSubject = "Pöntun móttekin"

func (m *Mailer) compose(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.Username)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func customerBody(order Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Takk fyrir pöntunina, %s!\n\n", order.FirstName)
	writeLines(&b, order)
	fmt.Fprintf(&b, "\nSamtals: %s %s\n", order.Amount, order.Currency)
	fmt.Fprintf(&b, "Pöntunarnúmer: %s\n", order.CheckoutID)
	return b.String()
}

func merchantSubject(order Order) string {
	return fmt.Sprintf("Ný pöntun %s", order.CheckoutID)
}

func merchantBody(order Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ný pöntun frá %s %s (%s)\n\n", order.FirstName, order.LastName, order.Email)
	writeLines(&b, order)
	fmt.Fprintf(&b, "\nSamtals: %s %s\n", order.Amount, order.Currency)
	return b.String()
}

func writeLines(b *strings.Builder, order Order) {
	for _, line := range order.Lines {
		name := line.ProductName
		if line.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, line.VariantName)
		}
		fmt.Fprintf(b, "%d x %s: %s\n", line.Quantity, name, line.LineTotal)
	}
}
