package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramService handles sending back-office notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		apiBase:     defaultTelegramAPI,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// WithAPIBase points the service at another Bot API host.
func (s *TelegramService) WithAPIBase(base string) *TelegramService {
	s.apiBase = strings.TrimRight(base, "/")
	return s
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// NotifyNewOrder tells the back office that a client submitted a payment
// reference for an order.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, c OrderConfirmation) error {
	if s.adminChatID == "" {
		return nil
	}

	docs := make([]string, 0, len(c.DocumentTypes))
	for _, d := range c.DocumentTypes {
		docs = append(docs, cleanText(d))
	}

	message := fmt.Sprintf(`<b>📄 NOUVELLE COMMANDE DE TRADUCTION</b>
<b>📋 Commande:</b> #%s
<b>👤 Client:</b> %s
<b>📧 Email:</b> %s
<b>📞 WhatsApp:</b> %s
<b>📑 Documents:</b> %s
<b>🌍 Langues:</b> %s → %s
<b>📄 Pages:</b> %d
<b>⏱ Délai:</b> %s
<b>💰 Total:</b> %s
<b>💳 Paiement:</b> %s (réf. %s)
━━━━━━━━━━━━━━━━━━`,
		c.OrderNumber,
		cleanText(c.ClientName),
		cleanText(c.ClientEmail),
		cleanText(c.ClientWhatsApp),
		strings.Join(docs, ", "),
		c.SourceLanguage,
		c.TargetLanguage,
		c.Pages,
		c.DeliveryTime,
		FormatAmount(c.Price),
		c.PaymentMethod,
		cleanText(c.PaymentReference),
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
