package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
)

// OrderHandler manages translation order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type labelledOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options returns the choices offered on the order form.
func (h *OrderHandler) Options(c *fiber.Ctx) error {
	languages := make([]labelledOption, 0, len(models.Languages))
	for _, l := range models.Languages {
		languages = append(languages, labelledOption{Value: string(l), Label: l.Label()})
	}
	methods := make([]labelledOption, 0, len(models.PaymentMethods))
	for _, m := range models.PaymentMethods {
		methods = append(methods, labelledOption{Value: string(m), Label: m.Label()})
	}
	calc := h.orders.Calculator()

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"languages":       languages,
			"document_types":  services.DocumentTypes,
			"countries":       services.Countries,
			"payment_methods": methods,
			"price_per_page":  calc.PricePerPage,
			"max_pages":       calc.MaxPages,
			"max_files":       h.orders.MaxFiles(),
			"currency":        services.Currency,
		},
	})
}

// Quote returns the price and delivery estimate for ?pages=N.
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	pages, err := services.ParsePages(c.Query("pages"))
	if err != nil {
		return err
	}
	quote, err := h.orders.Calculator().Quote(pages)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": quote})
}

// CreateOrder accepts the multipart order form and its PDF files.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid multipart form")
	}

	pages, err := services.ParsePages(formValue(form, "pages"))
	if err != nil {
		return err
	}

	draft := services.OrderDraft{
		Name:              formValue(form, "name"),
		Email:             formValue(form, "email"),
		WhatsApp:          formValue(form, "whatsapp"),
		Country:           formValue(form, "country"),
		DocumentTypes:     formValues(form, "document_types"),
		DocumentTypeOther: formValue(form, "document_type_other"),
		SourceLanguage:    formValue(form, "source_language"),
		TargetLanguage:    formValue(form, "target_language"),
		Pages:             pages,
		Notes:             formValue(form, "notes"),
	}

	files := make([]services.UploadedFile, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		files = append(files, uploadedFile(fh))
	}

	w := h.orders.NewWorkflow()
	if err := w.Submit(c.UserContext(), draft, files); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    services.NewOrderSummary(w.Order()),
	})
}

type paymentRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

// RecordPayment stores the client's mobile money reference and sends the confirmation.
func (h *OrderHandler) RecordPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	w, err := h.orders.Resume(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := w.RecordPayment(c.UserContext(), req.Method, req.Reference); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services.NewOrderSummary(w.Order()),
	})
}

// Summary returns the public confirmation view of an order.
func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sum, err := h.orders.Summary(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": sum})
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// formValues accepts repeated fields, "key[]" fields and comma separated lists.
func formValues(form *multipart.Form, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range form.Value[k] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func uploadedFile(fh *multipart.FileHeader) services.UploadedFile {
	return services.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
