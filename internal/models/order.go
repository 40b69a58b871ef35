package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Client is a requester, deduplicated by email.
type Client struct {
	BaseModel
	Name     string  `json:"name"`
	Email    string  `gorm:"uniqueIndex" json:"email"`
	WhatsApp string  `gorm:"column:whatsapp" json:"whatsapp"`
	Country  string  `json:"country"`
	Orders   []Order `json:"orders,omitempty"`
}

// Order is a single document translation request.
type Order struct {
	BaseModel
	ClientID           uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client             *Client        `json:"client,omitempty"`
	DocumentTypes      pq.StringArray `gorm:"type:text[]" json:"document_types"`
	DocumentTypeOther  string         `json:"document_type_other"`
	SourceLanguage     Language       `json:"source_language"`
	TargetLanguage     Language       `json:"target_language"`
	Pages              int            `json:"pages"`
	Price              int64          `json:"price"`
	DeliveryHours      int            `json:"delivery_hours"`
	Status             OrderStatus    `gorm:"index;default:pending" json:"status"`
	OriginalFiles      pq.StringArray `gorm:"type:text[]" json:"original_files"`
	TranslatedFile     *string        `json:"translated_file"`
	PaymentMethod      *PaymentMethod `json:"payment_method"`
	PaymentReference   *string        `json:"payment_reference"`
	PaymentConfirmed   bool           `json:"payment_confirmed"`
	PaymentConfirmedAt *time.Time     `json:"payment_confirmed_at"`
	Notes              string         `json:"notes"`
}

// OrderNumber is the short customer-facing reference of the order.
func (o *Order) OrderNumber() string {
	return ShortOrderNumber(o.ID)
}

// ShortOrderNumber returns the first 8 hex characters of id in upper case.
func ShortOrderNumber(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

// AllDocumentTypes returns the selected labels followed by the free-text one.
func (o *Order) AllDocumentTypes() []string {
	types := make([]string, 0, len(o.DocumentTypes)+1)
	types = append(types, o.DocumentTypes...)
	if other := strings.TrimSpace(o.DocumentTypeOther); other != "" {
		types = append(types, other)
	}
	return types
}

// AwaitingPayment reports whether the client still has to submit a payment reference.
func (o *Order) AwaitingPayment() bool {
	return o.Status == OrderStatusPending && (o.PaymentReference == nil || *o.PaymentReference == "")
}
