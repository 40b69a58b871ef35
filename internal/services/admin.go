package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/utils"
)

// AdminSubject is the subject of every back-office session.
const AdminSubject = "admin"

const minPasswordLength = 6

// AdminSession is the capability handed to back-office operations.
type AdminSession struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewAdminSession opens a session valid for ttl from now.
func NewAdminSession(now time.Time, ttl time.Duration) AdminSession {
	return AdminSession{
		Subject:   AdminSubject,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Check rejects empty and expired sessions.
func (s AdminSession) Check(now time.Time) error {
	if s.Subject != AdminSubject || s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// OrderFilter narrows the back-office order list.
type OrderFilter struct {
	Status models.OrderStatus
	Search string
	Limit  int
	Offset int
}

// ClientFilter narrows the back-office client list.
type ClientFilter struct {
	Search string
	Limit  int
	Offset int
}

// ClientSummary is a client with aggregated order figures.
type ClientSummary struct {
	models.Client
	OrderCount int64 `json:"order_count"`
	TotalSpent int64 `json:"total_spent"`
}

// OrderStats holds the aggregates shown on the dashboard.
type OrderStats struct {
	TotalOrders          int64                        `json:"total_orders"`
	TotalClients         int64                        `json:"total_clients"`
	OrdersByStatus       map[models.OrderStatus]int64 `json:"orders_by_status"`
	AwaitingConfirmation int64                        `json:"awaiting_payment_confirmation"`
	ConfirmedRevenue     int64                        `json:"confirmed_revenue"`
}

// AdminStore is the relational store behind the back office.
type AdminStore interface {
	AdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	ListClients(ctx context.Context, f ClientFilter) ([]ClientSummary, int64, error)
	OrderStats(ctx context.Context) (OrderStats, error)
}

// AdminService implements the back-office operations.
type AdminService struct {
	store        AdminStore
	blobs        BlobStore
	ttl          time.Duration
	maxFileBytes int64
	now          func() time.Time
}

// NewAdminService constructs AdminService.
func NewAdminService(store AdminStore, blobs BlobStore, ttl time.Duration, maxFileBytes int64) *AdminService {
	return &AdminService{
		store:        store,
		blobs:        blobs,
		ttl:          ttl,
		maxFileBytes: maxFileBytes,
		now:          time.Now,
	}
}

// Login verifies the back-office password and opens a session.
func (s *AdminService) Login(ctx context.Context, password string) (AdminSession, error) {
	if password == "" {
		return AdminSession{}, ErrInvalidCredentials
	}
	hash, err := s.store.AdminPasswordHash(ctx)
	if err != nil {
		return AdminSession{}, err
	}
	if !utils.CheckPassword(hash, password) {
		log.Println("[Admin] login rejected")
		return AdminSession{}, ErrInvalidCredentials
	}
	return NewAdminSession(s.now(), s.ttl), nil
}

// ChangePassword replaces the back-office password.
func (s *AdminService) ChangePassword(ctx context.Context, sess AdminSession, current, next, confirm string) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	if strings.TrimSpace(current) == "" || strings.TrimSpace(next) == "" {
		return NewValidationError("password", "veuillez remplir tous les champs")
	}
	if next != confirm {
		return NewValidationError("confirm_password", "les mots de passe ne correspondent pas")
	}
	if len(next) < minPasswordLength {
		return NewValidationError("new_password", "le nouveau mot de passe doit contenir au moins 6 caractères")
	}

	hash, err := s.store.AdminPasswordHash(ctx)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(hash, current) {
		return ErrInvalidCredentials
	}

	newHash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.SetAdminPasswordHash(ctx, newHash); err != nil {
		return &PersistenceError{Op: "update admin password", Err: err}
	}
	log.Println("[Admin] password changed")
	return nil
}

// UpdateOrderStatus moves an order to another lifecycle status.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, sess AdminSession, id uuid.UUID, rawStatus string) (*models.Order, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, NewValidationError("status", "statut de commande inconnu")
	}
	return s.updateOrder(ctx, id, map[string]interface{}{"status": status})
}

// AttachTranslatedFile uploads the translated document of an order.
func (s *AdminService) AttachTranslatedFile(ctx context.Context, sess AdminSession, id uuid.UUID, file UploadedFile) (*models.Order, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	if err := CheckPDF(file, s.maxFileBytes); err != nil {
		return nil, err
	}

	key := TranslatedKey(id, s.now(), file.Name)
	rc, err := file.Open()
	if err != nil {
		return nil, &UploadError{File: file.Name, Err: err}
	}
	defer rc.Close()
	if err := s.blobs.Upload(ctx, key, pdfContentType, rc); err != nil {
		return nil, &UploadError{File: file.Name, Err: err}
	}

	log.Printf("[Admin] translated file stored for order %s", models.ShortOrderNumber(id))
	return s.updateOrder(ctx, id, map[string]interface{}{"translated_file": s.blobs.PublicURL(key)})
}

// ConfirmPayment marks the payment of an order as received. It does not
// depend on the client having submitted a reference.
func (s *AdminService) ConfirmPayment(ctx context.Context, sess AdminSession, id uuid.UUID) (*models.Order, error) {
	now := s.now()
	if err := sess.Check(now); err != nil {
		return nil, err
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentConfirmed {
		return order, nil
	}
	return s.updateOrder(ctx, id, map[string]interface{}{
		"payment_confirmed":    true,
		"payment_confirmed_at": now,
	})
}

// DeleteOrder removes an order. Stored files are kept.
func (s *AdminService) DeleteOrder(ctx context.Context, sess AdminSession, id uuid.UUID) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	if _, err := s.store.GetOrder(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return &PersistenceError{Op: "delete order", Err: err}
	}
	log.Printf("[Admin] order %s deleted", models.ShortOrderNumber(id))
	return nil
}

// GetOrder returns one order with its client.
func (s *AdminService) GetOrder(ctx context.Context, sess AdminSession, id uuid.UUID) (*models.Order, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	return s.store.GetOrder(ctx, id)
}

// ListOrders returns a page of orders, newest first.
func (s *AdminService) ListOrders(ctx context.Context, sess AdminSession, f OrderFilter) ([]models.Order, int64, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, 0, err
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.store.ListOrders(ctx, f)
}

// ListClients returns a page of clients with their order totals.
func (s *AdminService) ListClients(ctx context.Context, sess AdminSession, f ClientFilter) ([]ClientSummary, int64, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, 0, err
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.store.ListClients(ctx, f)
}

// DashboardStats returns the dashboard aggregates with every status present.
func (s *AdminService) DashboardStats(ctx context.Context, sess AdminSession) (OrderStats, error) {
	if err := sess.Check(s.now()); err != nil {
		return OrderStats{}, err
	}
	stats, err := s.store.OrderStats(ctx)
	if err != nil {
		return OrderStats{}, err
	}
	if stats.OrdersByStatus == nil {
		stats.OrdersByStatus = make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	}
	for _, st := range models.OrderStatuses {
		if _, ok := stats.OrdersByStatus[st]; !ok {
			stats.OrdersByStatus[st] = 0
		}
	}
	return stats, nil
}

func (s *AdminService) updateOrder(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Order, error) {
	if err := s.store.UpdateOrder(ctx, id, fields); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "update order", Err: err}
	}
	return s.store.GetOrder(ctx, id)
}
