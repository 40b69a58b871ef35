package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderID:          "3f2a9c1e-0000-4000-8000-000000000000",
		OrderNumber:      "3F2A9C1E",
		ClientName:       "Awa <script>alert(1)</script>Koné",
		ClientEmail:      "awa@example.com",
		ClientWhatsApp:   "+225 07 00 00 00",
		DocumentTypes:    []string{"Diplôme", "CV"},
		SourceLanguage:   "Français",
		TargetLanguage:   "Anglais",
		Pages:            6,
		Price:            54000,
		DeliveryTime:     "48h (2 jours)",
		PaymentMethod:    "Wave",
		PaymentReference: "WV-123",
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	html, err := RenderOrderConfirmation(sampleConfirmation(), "+2250797721270")
	require.NoError(t, err)

	assert.Contains(t, html, "3F2A9C1E")
	assert.Contains(t, html, "Diplôme, CV")
	assert.Contains(t, html, "54 000 FCFA")
	assert.Contains(t, html, "48h (2 jours)")
	assert.Contains(t, html, "WV-123")
	assert.Contains(t, html, "https://wa.me/2250797721270")
	assert.NotContains(t, html, "<script>")
}

func TestMailerSendOrderConfirmation(t *testing.T) {
	var got resendEmail
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	m := NewMailer("re_test", "SPEAK ENGLISH CI <noreply@example.com>", "").WithEndpoint(srv.URL)
	require.NoError(t, m.SendOrderConfirmation(context.Background(), sampleConfirmation()))

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, []string{"awa@example.com"}, got.To)
	assert.Contains(t, got.Subject, "#3F2A9C1E")
	assert.Contains(t, got.HTML, "WV-123")
}

func TestMailerReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := NewMailer("re_test", "x@example.com", "").WithEndpoint(srv.URL)
	err := m.SendOrderConfirmation(context.Background(), sampleConfirmation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")

	unconfigured := NewMailer("", "x@example.com", "")
	assert.Error(t, unconfigured.SendOrderConfirmation(context.Background(), sampleConfirmation()))
}

func TestTelegramNotifyNewOrder(t *testing.T) {
	var msg telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &msg)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramService("bot-token", "42").WithAPIBase(srv.URL)
	require.NoError(t, tg.NotifyNewOrder(context.Background(), sampleConfirmation()))

	assert.Equal(t, "/botbot-token/sendMessage", path)
	assert.Equal(t, "42", msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Contains(t, msg.Text, "#3F2A9C1E")
	assert.Contains(t, msg.Text, "54 000 FCFA")
	assert.NotContains(t, msg.Text, "<script>")
}

func TestTelegramSkipsWhenUnconfigured(t *testing.T) {
	assert.NoError(t, NewTelegramService("", "42").NotifyNewOrder(context.Background(), sampleConfirmation()))
	assert.NoError(t, NewTelegramService("token", "").NotifyNewOrder(context.Background(), sampleConfirmation()))
}

func TestConfirmationNotifierTelegramIsBestEffort(t *testing.T) {
	var mails, telegrams int32
	mailSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mails, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer mailSrv.Close()
	tgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&telegrams, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer tgSrv.Close()

	n := NewConfirmationNotifier(
		NewMailer("key", "from@example.com", "").WithEndpoint(mailSrv.URL),
		NewTelegramService("token", "1").WithAPIBase(tgSrv.URL),
	)
	assert.NoError(t, n.NotifyOrderConfirmed(context.Background(), sampleConfirmation()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mails))
	assert.Equal(t, int32(1), atomic.LoadInt32(&telegrams))
}

func TestConfirmationNotifierReportsEmailFailure(t *testing.T) {
	mailSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mailSrv.Close()

	n := NewConfirmationNotifier(NewMailer("key", "from@example.com", "").WithEndpoint(mailSrv.URL), nil)
	err := n.NotifyOrderConfirmed(context.Background(), sampleConfirmation())
	require.Error(t, err)

	var notifyErr *NotificationError
	require.ErrorAs(t, err, &notifyErr)
	assert.Equal(t, "email", notifyErr.Channel)
	assert.True(t, strings.Contains(err.Error(), "500"))
}
