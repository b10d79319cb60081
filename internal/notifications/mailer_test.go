package notifications

import (
	"context"
	"io"
	"net/smtp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/logger"
)

type sentMail struct {
	to  []string
	msg string
}

func testOrder() Order {
	return Order{
		CheckoutID: uuid.New(),
		Email:      "kaupandi@example.is",
		FirstName:  "Anna",
		LastName:   "Jónsdóttir",
		Amount:     "2000.00",
		Currency:   "ISK",
		Lines: []OrderLine{
			{ProductName: "Kerti", VariantName: "Stórt", Quantity: 2, LineTotal: "2000.00"},
		},
	}
}

func newTestMailer(t *testing.T, cfg config.SMTPConfig, sink *[]sentMail) *Mailer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "mailer-test", Output: io.Discard})
	mailer, err := NewMailer(cfg, logg)
	require.NoError(t, err)
	mailer.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		*sink = append(*sink, sentMail{to: to, msg: string(msg)})
		return nil
	}
	return mailer
}

func TestOrderCreatedSendsCustomerAndMerchantMail(t *testing.T) {
	var sent []sentMail
	cfg := config.SMTPConfig{
		Host:        "smtp.example.is",
		Port:        587,
		Username:    "orders@example.is",
		Password:    "secret",
		OrdersInbox: "inbox@example.is",
	}
	mailer := newTestMailer(t, cfg, &sent)

	order := testOrder()
	require.NoError(t, mailer.OrderCreated(context.Background(), order))

	require.Len(t, sent, 2)
	assert.Equal(t, []string{order.Email}, sent[0].to)
	assert.Equal(t, []string{cfg.OrdersInbox}, sent[1].to)

	assert.True(t, strings.Contains(sent[0].msg, "Takk fyrir pöntunina, Anna!"))
	assert.True(t, strings.Contains(sent[0].msg, "2000.00 ISK"))
	assert.True(t, strings.Contains(sent[1].msg, "Anna Jónsdóttir"))
	assert.True(t, strings.Contains(sent[1].msg, "2 x Kerti (Stórt)"))
}

func TestOrderCreatedSkipsWhenSMTPDisabled(t *testing.T) {
	var sent []sentMail
	mailer := newTestMailer(t, config.SMTPConfig{}, &sent)

	require.NoError(t, mailer.OrderCreated(context.Background(), testOrder()))
	assert.Empty(t, sent)
}
