package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/speakci/internal/models"
)

type stubOrderStore struct {
	clients map[string]*models.Client
	orders  map[uuid.UUID]*models.Order

	findCalls     int
	clientInserts int
	clientUpdates int
	orderInserts  int
	paymentWrites int

	createOrderErr error
	paymentErr     error
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{
		clients: map[string]*models.Client{},
		orders:  map[uuid.UUID]*models.Order{},
	}
}

func (s *stubOrderStore) FindClientByEmail(_ context.Context, email string) (*models.Client, error) {
	s.findCalls++
	c, ok := s.clients[email]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubOrderStore) CreateClient(_ context.Context, c *models.Client) error {
	s.clientInserts++
	c.EnsureID()
	cp := *c
	s.clients[c.Email] = &cp
	return nil
}

func (s *stubOrderStore) UpdateClient(_ context.Context, c *models.Client) error {
	s.clientUpdates++
	cp := *c
	s.clients[c.Email] = &cp
	return nil
}

func (s *stubOrderStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.orderInserts++
	if s.createOrderErr != nil {
		return s.createOrderErr
	}
	o.EnsureID()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubOrderStore) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	for _, c := range s.clients {
		if c.ID == o.ClientID {
			client := *c
			cp.Client = &client
		}
	}
	return &cp, nil
}

func (s *stubOrderStore) UpdateOrderPayment(_ context.Context, id uuid.UUID, method models.PaymentMethod, reference string) error {
	s.paymentWrites++
	if s.paymentErr != nil {
		return s.paymentErr
	}
	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.PaymentMethod = &method
	o.PaymentReference = &reference
	return nil
}

type stubBlobStore struct {
	keys    []string
	failOn  string
	uploads int
}

func (b *stubBlobStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	b.uploads++
	if b.failOn != "" && strings.Contains(key, b.failOn) {
		return errors.New("bucket unavailable")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	b.keys = append(b.keys, key)
	return nil
}

func (b *stubBlobStore) PublicURL(key string) string {
	return "https://files.example.com/" + key
}

type stubNotifier struct {
	calls int
	last  OrderConfirmation
	err   error
}

func (n *stubNotifier) NotifyOrderConfirmed(_ context.Context, c OrderConfirmation) error {
	n.calls++
	n.last = c
	return n.err
}

func pdfFile(name string) UploadedFile {
	return BytesFile(name, "application/pdf", samplePDF)
}

func validDraft() OrderDraft {
	return OrderDraft{
		Name:           "Awa Koné",
		Email:          " Awa@Example.com ",
		WhatsApp:       "+225 07 00 00 00",
		Country:        "Côte d'Ivoire",
		DocumentTypes:  []string{"Diplôme", "CV"},
		SourceLanguage: "fr",
		TargetLanguage: "en",
		Pages:          6,
	}
}

type workflowFixture struct {
	store    *stubOrderStore
	blobs    *stubBlobStore
	notifier *stubNotifier
	svc      *OrderService
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		store:    newStubOrderStore(),
		blobs:    &stubBlobStore{},
		notifier: &stubNotifier{},
	}
	f.svc = NewOrderService(f.store, f.blobs, f.notifier, NewCalculator(0, 0), 1<<20, 0)
	f.svc.now = func() time.Time { return time.UnixMilli(1718000000000) }
	return f
}

func TestSubmitCreatesPendingOrder(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()

	err := w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("Diplôme Été 2024.pdf"), pdfFile("cv.pdf")})
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingPayment, w.State())
	assert.Equal(t, []string{"originals/1718000000000_diplome_ete_2024.pdf", "originals/1718000000000_cv.pdf"}, f.blobs.keys)

	o := w.Order()
	require.NotNil(t, o)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, int64(54000), o.Price)
	assert.Equal(t, 48, o.DeliveryHours)
	assert.Equal(t, models.LanguageFrench, o.SourceLanguage)
	assert.Equal(t, models.LanguageEnglish, o.TargetLanguage)
	assert.Len(t, o.OriginalFiles, 2)
	assert.True(t, strings.HasPrefix(o.OriginalFiles[0], "https://files.example.com/originals/"))
	assert.Equal(t, "awa@example.com", w.Client().Email)
	assert.Equal(t, 1, f.store.clientInserts)
	assert.Equal(t, 1, f.store.orderInserts)
}

func TestSubmitReusesClientByEmail(t *testing.T) {
	f := newWorkflowFixture()
	existing := &models.Client{Name: "Old Name", Email: "awa@example.com", WhatsApp: "000", Country: "France"}
	require.NoError(t, f.store.CreateClient(context.Background(), existing))
	f.store.clientInserts = 0

	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))

	assert.Equal(t, 0, f.store.clientInserts)
	assert.Equal(t, 1, f.store.clientUpdates)
	assert.Equal(t, existing.ID, w.Order().ClientID)
	assert.Equal(t, "Awa Koné", f.store.clients["awa@example.com"].Name)
	assert.Equal(t, "Côte d'Ivoire", f.store.clients["awa@example.com"].Country)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OrderDraft)
		files  []UploadedFile
		field  string
	}{
		{"missing name", func(d *OrderDraft) { d.Name = "  " }, nil, "name"},
		{"missing whatsapp", func(d *OrderDraft) { d.WhatsApp = "" }, nil, "whatsapp"},
		{"invalid email", func(d *OrderDraft) { d.Email = "not-an-email" }, nil, "email"},
		{"unsupported language", func(d *OrderDraft) { d.SourceLanguage = "xx" }, nil, "source_language"},
		{"same languages", func(d *OrderDraft) { d.TargetLanguage = "FR" }, nil, "target_language"},
		{"no document type", func(d *OrderDraft) { d.DocumentTypes = nil }, nil, "document_types"},
		{"unknown document type", func(d *OrderDraft) { d.DocumentTypes = []string{"Menu"} }, nil, "document_types"},
		{"zero pages", func(d *OrderDraft) { d.Pages = 0 }, nil, "pages"},
		{"too many pages", func(d *OrderDraft) { d.Pages = 101 }, nil, "pages"},
		{"no files", func(d *OrderDraft) {}, []UploadedFile{}, "files"},
		{"not a pdf", func(d *OrderDraft) {}, []UploadedFile{BytesFile("a.pdf", "application/pdf", []byte("hello"))}, "files"},
		{"wrong content type", func(d *OrderDraft) {}, []UploadedFile{BytesFile("a.png", "image/png", samplePDF)}, "files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture()
			d := validDraft()
			tt.mutate(&d)
			files := tt.files
			if files == nil {
				files = []UploadedFile{pdfFile("a.pdf")}
			}

			w := f.svc.NewWorkflow()
			err := w.Submit(context.Background(), d, files)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, StateDrafting, w.State())
			assert.Zero(t, f.blobs.uploads)
			assert.Zero(t, f.store.findCalls)
			assert.Zero(t, f.store.clientInserts)
			assert.Zero(t, f.store.orderInserts)
		})
	}
}

func TestSubmitAcceptsOtherDocumentTypeOnly(t *testing.T) {
	f := newWorkflowFixture()
	d := validDraft()
	d.DocumentTypes = nil
	d.DocumentTypeOther = "Attestation de stage"

	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), d, []UploadedFile{pdfFile("a.pdf")}))
	assert.Equal(t, []string{"Attestation de stage"}, w.Order().AllDocumentTypes())
}

func TestSubmitUploadFailureCreatesNothing(t *testing.T) {
	f := newWorkflowFixture()
	f.blobs.failOn = "second"

	w := f.svc.NewWorkflow()
	err := w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("first.pdf"), pdfFile("second.pdf")})

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "second.pdf", uerr.File)
	assert.Equal(t, StateDrafting, w.State())
	assert.Nil(t, w.Order())
	assert.Zero(t, f.store.findCalls)
	assert.Zero(t, f.store.clientInserts)
	assert.Zero(t, f.store.orderInserts)

	w.Reset()
	assert.Equal(t, StateDrafting, w.State())
	assert.Zero(t, f.store.clientInserts)
}

func TestSubmitPersistenceFailure(t *testing.T) {
	f := newWorkflowFixture()
	f.store.createOrderErr = errors.New("connection reset")

	w := f.svc.NewWorkflow()
	err := w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")})

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create order", perr.Op)
	assert.Equal(t, StateDrafting, w.State())
	// the client row is left behind
	assert.Equal(t, 1, f.store.clientInserts)
}

func TestDuplicateFileNamesGetDistinctKeys(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("scan.pdf"), pdfFile("Scan.pdf")}))
	assert.Equal(t, []string{"originals/1718000000000_scan.pdf", "originals/1718000000000_scan_2.pdf"}, f.blobs.keys)
}

func TestSubmitRejectsTooManyFiles(t *testing.T) {
	f := newWorkflowFixture()
	files := make([]UploadedFile, DefaultMaxFiles+1)
	for i := range files {
		files[i] = pdfFile(fmt.Sprintf("page%d.pdf", i))
	}

	w := f.svc.NewWorkflow()
	err := w.Submit(context.Background(), validDraft(), files)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "files", verr.Field)
	assert.Equal(t, StateDrafting, w.State())
	assert.Zero(t, f.blobs.uploads)
	assert.Equal(t, DefaultMaxFiles, f.svc.MaxFiles())
}

func TestSuffixedFileNameDoesNotOverwriteDuplicate(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	files := []UploadedFile{pdfFile("a.pdf"), pdfFile("A.pdf"), pdfFile("a_2.pdf")}
	require.NoError(t, w.Submit(context.Background(), validDraft(), files))

	assert.Equal(t, []string{
		"originals/1718000000000_a.pdf",
		"originals/1718000000000_a_2.pdf",
		"originals/1718000000000_a_2_2.pdf",
	}, f.blobs.keys)
	assert.Len(t, w.Order().OriginalFiles, 3)
	assert.NotEqual(t, w.Order().OriginalFiles[1], w.Order().OriginalFiles[2])
}

func TestRecordPaymentNotifiesOnce(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))

	require.NoError(t, w.RecordPayment(context.Background(), "orange-money", "  OM-42 "))

	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, "Orange Money", f.notifier.last.PaymentMethod)
	assert.Equal(t, "OM-42", f.notifier.last.PaymentReference)
	assert.Equal(t, "48h (2 jours)", f.notifier.last.DeliveryTime)
	assert.Equal(t, "Français", f.notifier.last.SourceLanguage)
	assert.Equal(t, "awa@example.com", f.notifier.last.ClientEmail)
	assert.Equal(t, w.Order().OrderNumber(), f.notifier.last.OrderNumber)
	assert.False(t, w.Order().PaymentConfirmed)
}

func TestRecordPaymentNotificationFailureStillConfirms(t *testing.T) {
	f := newWorkflowFixture()
	f.notifier.err = &NotificationError{Channel: "email", Err: errors.New("smtp down")}

	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))
	require.NoError(t, w.RecordPayment(context.Background(), "wave", "WV-1"))

	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 1, f.notifier.calls)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))

	err := w.RecordPayment(context.Background(), "paypal", "REF")
	assert.True(t, IsValidation(err))
	err = w.RecordPayment(context.Background(), "wave", "   ")
	assert.True(t, IsValidation(err))
	err = w.RecordPayment(context.Background(), "wave", strings.Repeat("x", 101))
	assert.True(t, IsValidation(err))

	assert.Equal(t, StateAwaitingPayment, w.State())
	assert.Zero(t, f.store.paymentWrites)
	assert.Zero(t, f.notifier.calls)
}

func TestRecordPaymentPersistenceFailure(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))

	f.store.paymentErr = errors.New("deadlock")
	err := w.RecordPayment(context.Background(), "wave", "WV-1")

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StateAwaitingPayment, w.State())
	assert.Zero(t, f.notifier.calls)
}

func TestWorkflowRejectsOutOfOrderCalls(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()

	assert.ErrorIs(t, w.RecordPayment(context.Background(), "wave", "WV-1"), ErrInvalidTransition)

	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))
	assert.ErrorIs(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}), ErrInvalidTransition)

	require.NoError(t, w.RecordPayment(context.Background(), "wave", "WV-1"))
	assert.ErrorIs(t, w.RecordPayment(context.Background(), "wave", "WV-2"), ErrInvalidTransition)
	assert.Equal(t, 1, f.notifier.calls)

	w.Reset()
	assert.Equal(t, StateDrafting, w.State())
	assert.Nil(t, w.Order())
	assert.Nil(t, w.Client())
}

func TestResumeContinuesAtPaymentStep(t *testing.T) {
	f := newWorkflowFixture()
	first := f.svc.NewWorkflow()
	require.NoError(t, first.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))
	id := first.Order().ID

	w, err := f.svc.Resume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, w.State())
	require.NotNil(t, w.Client())

	require.NoError(t, w.RecordPayment(context.Background(), "moov_money", "MV-9"))
	assert.Equal(t, "Awa Koné", f.notifier.last.ClientName)

	_, err = f.svc.Resume(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Resume(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSummaryHidesClientAndTracksPayment(t *testing.T) {
	f := newWorkflowFixture()
	w := f.svc.NewWorkflow()
	require.NoError(t, w.Submit(context.Background(), validDraft(), []UploadedFile{pdfFile("a.pdf")}))
	id := w.Order().ID

	sum, err := f.svc.Summary(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, w.Order().OrderNumber(), sum.OrderNumber)
	assert.Equal(t, "54 000 FCFA", sum.PriceLabel)
	assert.Equal(t, "48h (2 jours)", sum.DeliveryTime)
	assert.Equal(t, "Français", sum.SourceLanguage)
	assert.True(t, sum.AwaitingPayment)
	assert.Empty(t, sum.PaymentMethod)

	require.NoError(t, w.RecordPayment(context.Background(), "orange-money", "OM-77"))
	sum, err = f.svc.Summary(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, sum.AwaitingPayment)
	assert.Equal(t, "Orange Money", sum.PaymentMethod)
	assert.Equal(t, "En attente", sum.StatusLabel)

	_, err = f.svc.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkflowStateString(t *testing.T) {
	assert.Equal(t, "drafting", StateDrafting.String())
	assert.Equal(t, "confirmed", StateConfirmed.String())
	assert.Equal(t, "WorkflowState(42)", WorkflowState(42).String())
}
