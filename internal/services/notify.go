package services

import (
	"context"
	"errors"
	"log"

	"github.com/microcosm-cc/bluemonday"
)

// OrderConfirmation is the summary sent once a payment reference is recorded.
type OrderConfirmation struct {
	OrderID          string
	OrderNumber      string
	ClientName       string
	ClientEmail      string
	ClientWhatsApp   string
	DocumentTypes    []string
	SourceLanguage   string
	TargetLanguage   string
	Pages            int
	Price            int64
	DeliveryTime     string
	PaymentMethod    string
	PaymentReference string
}

// OrderNotifier delivers order confirmations.
type OrderNotifier interface {
	NotifyOrderConfirmed(ctx context.Context, c OrderConfirmation) error
}

// textPolicy strips any markup from user supplied text before it is placed
// in HTML emails or Telegram messages.
var textPolicy = bluemonday.StrictPolicy()

func cleanText(s string) string {
	return textPolicy.Sanitize(s)
}

// ConfirmationNotifier emails the client and informs the back office on
// Telegram. Only the email outcome is reported; Telegram is best effort.
type ConfirmationNotifier struct {
	mailer   *Mailer
	telegram *TelegramService
}

// NewConfirmationNotifier wires the confirmation channels. Either may be nil.
func NewConfirmationNotifier(mailer *Mailer, telegram *TelegramService) *ConfirmationNotifier {
	return &ConfirmationNotifier{mailer: mailer, telegram: telegram}
}

// NotifyOrderConfirmed implements OrderNotifier.
func (n *ConfirmationNotifier) NotifyOrderConfirmed(ctx context.Context, c OrderConfirmation) error {
	var errs []error

	if n.mailer != nil {
		if err := n.mailer.SendOrderConfirmation(ctx, c); err != nil {
			errs = append(errs, &NotificationError{Channel: "email", Err: err})
		}
	}

	if n.telegram != nil {
		if err := n.telegram.NotifyNewOrder(ctx, c); err != nil {
			log.Printf("[Telegram] order %s notification failed: %v", c.OrderNumber, err)
		}
	}

	return errors.Join(errs...)
}
