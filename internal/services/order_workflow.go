package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/speakci/internal/models"
)

// WorkflowState is a step of the translation order submission.
type WorkflowState int

const (
	StateDrafting WorkflowState = iota
	StateFilesUploading
	StatePersisting
	StateAwaitingPayment
	StatePaymentRecorded
	StateConfirmed
)

func (s WorkflowState) String() string {
	switch s {
	case StateDrafting:
		return "drafting"
	case StateFilesUploading:
		return "files_uploading"
	case StatePersisting:
		return "persisting"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StatePaymentRecorded:
		return "payment_recorded"
	case StateConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("WorkflowState(%d)", int(s))
}

const maxReferenceLength = 100

// DefaultMaxFiles is the number of documents one order may carry.
const DefaultMaxFiles = 5

// DocumentTypes is the catalogue of document labels offered on the order form.
var DocumentTypes = []string{
	"Acte de naissance",
	"Acte de mariage",
	"Diplôme",
	"Relevé de notes",
	"Certificat de travail",
	"CV",
	"Lettre de motivation",
	"Contrat",
	"Passeport",
	"Permis de conduire",
}

// Countries is the list offered on the order form; any non-empty value is accepted.
var Countries = []string{
	"Côte d'Ivoire", "France", "Canada", "Belgique", "Suisse",
	"Sénégal", "Cameroun", "Mali", "Burkina Faso", "Autre",
}

// ClientOrderStore is the relational store used by the order workflow.
type ClientOrderStore interface {
	FindClientByEmail(ctx context.Context, email string) (*models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, c *models.Client) error
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderPayment(ctx context.Context, id uuid.UUID, method models.PaymentMethod, reference string) error
}

// OrderDraft is the first order form.
type OrderDraft struct {
	Name              string
	Email             string
	WhatsApp          string
	Country           string
	DocumentTypes     []string
	DocumentTypeOther string
	SourceLanguage    string
	TargetLanguage    string
	Pages             int
	Notes             string
}

// OrderService builds order workflows around shared collaborators.
type OrderService struct {
	store        ClientOrderStore
	blobs        BlobStore
	notifier     OrderNotifier
	calc         Calculator
	maxFileBytes int64
	maxFiles     int
	now          func() time.Time
}

// NewOrderService constructs OrderService. maxFiles caps the documents of one
// order; a non-positive value falls back to DefaultMaxFiles.
func NewOrderService(store ClientOrderStore, blobs BlobStore, notifier OrderNotifier, calc Calculator, maxFileBytes int64, maxFiles int) *OrderService {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &OrderService{
		store:        store,
		blobs:        blobs,
		notifier:     notifier,
		calc:         calc,
		maxFileBytes: maxFileBytes,
		maxFiles:     maxFiles,
		now:          time.Now,
	}
}

// MaxFiles returns the number of documents one order may carry.
func (s *OrderService) MaxFiles() int {
	return s.maxFiles
}

// Calculator returns the pricing rules used for new orders.
func (s *OrderService) Calculator() Calculator {
	return s.calc
}

// NewWorkflow starts a submission in the drafting state.
func (s *OrderService) NewWorkflow() *OrderWorkflow {
	return &OrderWorkflow{svc: s, state: StateDrafting}
}

// Resume loads an order created by an earlier request and positions the
// workflow on its payment step.
func (s *OrderService) Resume(ctx context.Context, orderID uuid.UUID) (*OrderWorkflow, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.AwaitingPayment() {
		return nil, ErrInvalidTransition
	}
	return &OrderWorkflow{
		svc:    s,
		state:  StateAwaitingPayment,
		order:  order,
		client: order.Client,
	}, nil
}

// OrderSummary is the public confirmation view of an order.
type OrderSummary struct {
	ID              uuid.UUID          `json:"id"`
	OrderNumber     string             `json:"order_number"`
	DocumentTypes   []string           `json:"document_types"`
	SourceLanguage  string             `json:"source_language"`
	TargetLanguage  string             `json:"target_language"`
	Pages           int                `json:"pages"`
	Price           int64              `json:"price"`
	PriceLabel      string             `json:"price_label"`
	DeliveryTime    string             `json:"delivery_time"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	Status          models.OrderStatus `json:"status"`
	StatusLabel     string             `json:"status_label"`
	AwaitingPayment bool               `json:"awaiting_payment"`
}

// Summary returns the confirmation view of an order. Client details are left out.
func (s *OrderService) Summary(ctx context.Context, orderID uuid.UUID) (OrderSummary, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return OrderSummary{}, err
	}
	return NewOrderSummary(o), nil
}

// NewOrderSummary builds the confirmation view of o.
func NewOrderSummary(o *models.Order) OrderSummary {
	sum := OrderSummary{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber(),
		DocumentTypes:   o.AllDocumentTypes(),
		SourceLanguage:  o.SourceLanguage.Label(),
		TargetLanguage:  o.TargetLanguage.Label(),
		Pages:           o.Pages,
		Price:           o.Price,
		PriceLabel:      FormatAmount(o.Price),
		DeliveryTime:    FormatDeliveryHours(o.DeliveryHours),
		Status:          o.Status,
		StatusLabel:     o.Status.Label(),
		AwaitingPayment: o.AwaitingPayment(),
	}
	if o.PaymentMethod != nil {
		sum.PaymentMethod = o.PaymentMethod.Label()
	}
	return sum
}

// OrderWorkflow drives one order from the form to the confirmation.
// It is owned by a single request and is not safe for concurrent use.
type OrderWorkflow struct {
	svc    *OrderService
	state  WorkflowState
	order  *models.Order
	client *models.Client
}

// State returns the current step.
func (w *OrderWorkflow) State() WorkflowState { return w.state }

// Order returns the persisted order, nil before the persisting step.
func (w *OrderWorkflow) Order() *models.Order { return w.order }

// Client returns the client the order belongs to.
func (w *OrderWorkflow) Client() *models.Client { return w.client }

// Reset discards the submission. Files already uploaded stay in the blob store.
func (w *OrderWorkflow) Reset() {
	w.state = StateDrafting
	w.order = nil
	w.client = nil
}

// Submit validates the draft, uploads the files and persists the client and
// the pending order. On failure the workflow returns to drafting.
func (w *OrderWorkflow) Submit(ctx context.Context, draft OrderDraft, files []UploadedFile) error {
	if w.state != StateDrafting {
		return ErrInvalidTransition
	}

	draft, err := w.svc.validateDraft(draft, files)
	if err != nil {
		return err
	}

	w.state = StateFilesUploading
	submittedAt := w.svc.now()
	urls, err := w.svc.uploadOriginals(ctx, submittedAt, files)
	if err != nil {
		w.state = StateDrafting
		return err
	}

	w.state = StatePersisting
	client, order, err := w.svc.persist(ctx, draft, urls)
	if err != nil {
		w.state = StateDrafting
		return err
	}

	w.client = client
	w.order = order
	w.state = StateAwaitingPayment
	log.Printf("[Order] order %s created for %s (%d pages, %d files)", order.OrderNumber(), client.Email, order.Pages, len(urls))
	return nil
}

// RecordPayment stores the client's payment reference and sends the
// confirmation. A notification failure is logged and the workflow still
// reaches the confirmed state.
func (w *OrderWorkflow) RecordPayment(ctx context.Context, rawMethod, reference string) error {
	if w.state != StateAwaitingPayment || w.order == nil {
		return ErrInvalidTransition
	}

	method, err := models.ParsePaymentMethod(rawMethod)
	if err != nil {
		return NewValidationError("payment_method", "veuillez choisir un mode de paiement (Wave, Orange Money ou Moov Money)")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return NewValidationError("payment_reference", "veuillez saisir la référence de paiement")
	}
	if len(reference) > maxReferenceLength {
		return NewValidationError("payment_reference", "la référence de paiement est trop longue")
	}

	if err := w.svc.store.UpdateOrderPayment(ctx, w.order.ID, method, reference); err != nil {
		return &PersistenceError{Op: "record payment", Err: err}
	}
	w.order.PaymentMethod = &method
	w.order.PaymentReference = &reference
	w.state = StatePaymentRecorded

	if w.svc.notifier != nil {
		if err := w.svc.notifier.NotifyOrderConfirmed(ctx, w.Confirmation()); err != nil {
			log.Printf("[Order] confirmation notification failed for order %s: %v", w.order.OrderNumber(), err)
		}
	}

	w.state = StateConfirmed
	return nil
}

// Confirmation builds the notification payload for the current order.
func (w *OrderWorkflow) Confirmation() OrderConfirmation {
	o := w.order
	c := OrderConfirmation{
		OrderID:        o.ID.String(),
		OrderNumber:    o.OrderNumber(),
		DocumentTypes:  o.AllDocumentTypes(),
		SourceLanguage: o.SourceLanguage.Label(),
		TargetLanguage: o.TargetLanguage.Label(),
		Pages:          o.Pages,
		Price:          o.Price,
		DeliveryTime:   FormatDeliveryHours(o.DeliveryHours),
	}
	if w.client != nil {
		c.ClientName = w.client.Name
		c.ClientEmail = w.client.Email
		c.ClientWhatsApp = w.client.WhatsApp
	}
	if o.PaymentMethod != nil {
		c.PaymentMethod = o.PaymentMethod.Label()
	}
	if o.PaymentReference != nil {
		c.PaymentReference = *o.PaymentReference
	}
	return c
}

func (s *OrderService) validateDraft(d OrderDraft, files []UploadedFile) (OrderDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.WhatsApp = strings.TrimSpace(d.WhatsApp)
	d.Country = strings.TrimSpace(d.Country)
	d.SourceLanguage = strings.TrimSpace(d.SourceLanguage)
	d.TargetLanguage = strings.TrimSpace(d.TargetLanguage)
	d.DocumentTypeOther = strings.TrimSpace(d.DocumentTypeOther)
	d.Notes = strings.TrimSpace(d.Notes)

	required := []struct {
		field, value string
	}{
		{"name", d.Name},
		{"email", d.Email},
		{"whatsapp", d.WhatsApp},
		{"country", d.Country},
		{"source_language", d.SourceLanguage},
		{"target_language", d.TargetLanguage},
	}
	for _, r := range required {
		if r.value == "" {
			return d, NewValidationError(r.field, "veuillez remplir tous les champs obligatoires")
		}
	}

	if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != d.Email {
		return d, NewValidationError("email", "adresse email invalide")
	}

	source, err := models.ParseLanguage(d.SourceLanguage)
	if err != nil {
		return d, NewValidationError("source_language", "langue source non prise en charge")
	}
	target, err := models.ParseLanguage(d.TargetLanguage)
	if err != nil {
		return d, NewValidationError("target_language", "langue cible non prise en charge")
	}
	if source == target {
		return d, NewValidationError("target_language", "la langue source et cible doivent être différentes")
	}
	d.SourceLanguage, d.TargetLanguage = string(source), string(target)

	types, err := normalizeDocumentTypes(d.DocumentTypes)
	if err != nil {
		return d, err
	}
	d.DocumentTypes = types
	if len(d.DocumentTypes) == 0 && d.DocumentTypeOther == "" {
		return d, NewValidationError("document_types", "veuillez sélectionner au moins un type de document")
	}

	if err := s.calc.CheckPages(d.Pages); err != nil {
		return d, err
	}

	if len(files) == 0 {
		return d, NewValidationError("files", "veuillez joindre au moins un document PDF")
	}
	if len(files) > s.maxFiles {
		return d, NewValidationError("files", fmt.Sprintf("vous pouvez joindre au plus %d documents par commande", s.maxFiles))
	}
	for _, f := range files {
		if err := CheckPDF(f, s.maxFileBytes); err != nil {
			return d, err
		}
	}

	return d, nil
}

func normalizeDocumentTypes(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		if !slices.Contains(DocumentTypes, t) {
			return nil, NewValidationError("document_types", fmt.Sprintf("type de document inconnu : %q", t))
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *OrderService) uploadOriginals(ctx context.Context, submittedAt time.Time, files []UploadedFile) ([]string, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	clean := uniqueNames(names)

	urls := make([]string, 0, len(files))
	for i, f := range files {
		key := OriginalKey(submittedAt, clean[i])
		if err := s.uploadOne(ctx, key, f); err != nil {
			log.Printf("[Order] upload of %q failed: %v", f.Name, err)
			return nil, &UploadError{File: f.Name, Err: err}
		}
		urls = append(urls, s.blobs.PublicURL(key))
	}
	return urls, nil
}

func (s *OrderService) uploadOne(ctx context.Context, key string, f UploadedFile) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return s.blobs.Upload(ctx, key, pdfContentType, rc)
}

func (s *OrderService) persist(ctx context.Context, d OrderDraft, urls []string) (*models.Client, *models.Order, error) {
	client, err := s.store.FindClientByEmail(ctx, d.Email)
	switch {
	case err == nil:
		client.Name = d.Name
		client.WhatsApp = d.WhatsApp
		client.Country = d.Country
		if err := s.store.UpdateClient(ctx, client); err != nil {
			return nil, nil, &PersistenceError{Op: "update client", Err: err}
		}
	case errors.Is(err, ErrClientNotFound):
		client = &models.Client{
			Name:     d.Name,
			Email:    d.Email,
			WhatsApp: d.WhatsApp,
			Country:  d.Country,
		}
		if err := s.store.CreateClient(ctx, client); err != nil {
			return nil, nil, &PersistenceError{Op: "create client", Err: err}
		}
	default:
		return nil, nil, &PersistenceError{Op: "find client", Err: err}
	}

	price, _ := s.calc.Price(d.Pages)
	hours, _ := s.calc.DeliveryHours(d.Pages)

	order := &models.Order{
		ClientID:          client.ID,
		DocumentTypes:     d.DocumentTypes,
		DocumentTypeOther: d.DocumentTypeOther,
		SourceLanguage:    models.Language(d.SourceLanguage),
		TargetLanguage:    models.Language(d.TargetLanguage),
		Pages:             d.Pages,
		Price:             price,
		DeliveryHours:     hours,
		Status:            models.OrderStatusPending,
		OriginalFiles:     urls,
		Notes:             d.Notes,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return client, nil, &PersistenceError{Op: "create order", Err: err}
	}
	order.Client = client
	return client, order, nil
}
