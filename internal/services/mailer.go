package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const defaultResendEndpoint = "https://api.resend.com/emails"

// Mailer sends transactional emails through the Resend HTTP API.
type Mailer struct {
	apiKey   string
	from     string
	whatsApp string
	endpoint string
	client   *http.Client
}

// NewMailer creates a Mailer. whatsApp is the contact number shown in emails.
func NewMailer(apiKey, from, whatsApp string) *Mailer {
	return &Mailer{
		apiKey:   apiKey,
		from:     from,
		whatsApp: whatsApp,
		endpoint: defaultResendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint.
func (m *Mailer) WithEndpoint(endpoint string) *Mailer {
	m.endpoint = endpoint
	return m
}

// Enabled reports whether an API key is configured.
func (m *Mailer) Enabled() bool {
	return m.apiKey != ""
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOrderConfirmation emails the order summary to the client.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, c OrderConfirmation) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer not configured")
	}
	if strings.TrimSpace(c.ClientEmail) == "" {
		return fmt.Errorf("order %s has no client email", c.OrderNumber)
	}

	html, err := RenderOrderConfirmation(c, m.whatsApp)
	if err != nil {
		return err
	}

	err = m.send(ctx, resendEmail{
		From:    m.from,
		To:      []string{c.ClientEmail},
		Subject: fmt.Sprintf("✓ Confirmation de votre commande de traduction #%s", c.OrderNumber),
		HTML:    html,
	})
	if err != nil {
		return err
	}
	log.Printf("[Mail] confirmation sent for order %s", c.OrderNumber)
	return nil
}

func (m *Mailer) send(ctx context.Context, email resendEmail) error {
	body, err := json.Marshal(email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; color: #333; background-color: #f5f5f5;">
<div style="max-width: 600px; margin: 0 auto; background-color: #ffffff;">
  <div style="background: linear-gradient(135deg, #f97316 0%, #14b8a6 100%); padding: 30px; text-align: center;">
    <h1 style="color: white; margin: 0;">SPEAK ENGLISH CI</h1>
    <p style="color: white;">Service de Traduction Certifiée</p>
  </div>
  <div style="padding: 30px;">
    <p style="text-align: center;"><strong>✓ Commande Confirmée</strong></p>
    <h2 style="text-align: center;">Bonjour {{.ClientName}} !</h2>
    <p style="text-align: center;">Votre commande de traduction a été reçue avec succès. Voici le récapitulatif de votre commande :</p>
    <table style="width: 100%; background-color: #f8fafc; border-radius: 12px; padding: 20px;">
      <tr><td>Numéro de commande</td><td><strong>{{.OrderNumber}}</strong></td></tr>
      <tr><td>Type(s) de document</td><td><strong>{{.DocumentTypes}}</strong></td></tr>
      <tr><td>Traduction</td><td><strong>{{.SourceLanguage}} → {{.TargetLanguage}}</strong></td></tr>
      <tr><td>Nombre de pages</td><td><strong>{{.Pages}} page(s)</strong></td></tr>
      <tr><td>Délai de livraison</td><td><strong>{{.DeliveryTime}}</strong></td></tr>
      <tr><td>Mode de paiement</td><td><strong>{{.PaymentMethod}}</strong></td></tr>
      <tr><td>Référence de paiement</td><td><strong>{{.PaymentReference}}</strong></td></tr>
      <tr><td>Total payé</td><td><strong>{{.Total}}</strong></td></tr>
    </table>
    <p style="text-align: center;">📧 Vous recevrez votre document traduit par email et WhatsApp dès qu'il sera prêt.</p>
    {{if .WhatsAppURL}}<p style="text-align: center;">Des questions ? Contactez-nous sur WhatsApp :
      <a href="{{.WhatsAppURL}}">💬 Nous contacter sur WhatsApp</a></p>{{end}}
  </div>
  <div style="background-color: #1e293b; color: white; padding: 30px; text-align: center;">
    <p><strong>SPEAK ENGLISH CI</strong></p>
    <p>Service de Traduction Certifiée &amp; Coaching en Anglais</p>
    <p style="font-size: 12px; color: #94a3b8;">Cet email a été envoyé automatiquement. Merci de ne pas y répondre directement.</p>
  </div>
</div>
</body>
</html>`))

type confirmationView struct {
	OrderNumber      string
	ClientName       template.HTML
	DocumentTypes    template.HTML
	SourceLanguage   string
	TargetLanguage   string
	Pages            int
	DeliveryTime     string
	PaymentMethod    string
	PaymentReference template.HTML
	Total            string
	WhatsAppURL      string
}

// RenderOrderConfirmation renders the confirmation email body.
func RenderOrderConfirmation(c OrderConfirmation, whatsApp string) (string, error) {
	docs := make([]string, 0, len(c.DocumentTypes))
	for _, d := range c.DocumentTypes {
		docs = append(docs, cleanText(d))
	}

	view := confirmationView{
		OrderNumber:      c.OrderNumber,
		ClientName:       template.HTML(cleanText(c.ClientName)),
		DocumentTypes:    template.HTML(strings.Join(docs, ", ")),
		SourceLanguage:   c.SourceLanguage,
		TargetLanguage:   c.TargetLanguage,
		Pages:            c.Pages,
		DeliveryTime:     c.DeliveryTime,
		PaymentMethod:    c.PaymentMethod,
		PaymentReference: template.HTML(cleanText(c.PaymentReference)),
		Total:            FormatAmount(c.Price),
	}
	if digits := strings.TrimPrefix(strings.TrimSpace(whatsApp), "+"); digits != "" {
		view.WhatsAppURL = "https://wa.me/" + digits
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
