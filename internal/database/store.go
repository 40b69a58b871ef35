package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
)

// Store implements the service store interfaces on top of gorm.
type Store struct {
	db *gorm.DB
}

// NewStore constructs Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var (
	_ services.ClientOrderStore = (*Store)(nil)
	_ services.AdminStore       = (*Store)(nil)
	_ services.ContentStore     = (*Store)(nil)
)

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

// Clients and orders

func (s *Store) FindClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&client).Error
	if err != nil {
		return nil, notFound(err, services.ErrClientNotFound)
	}
	return &client, nil
}

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	return s.db.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"name":     c.Name,
		"whatsapp": c.WhatsApp,
		"country":  c.Country,
	}).Error
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.db.WithContext(ctx).Omit("Client").Create(o).Error
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Client").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrOrderNotFound)
	}
	return &order, nil
}

func (s *Store) UpdateOrderPayment(ctx context.Context, id uuid.UUID, method models.PaymentMethod, reference string) error {
	return s.UpdateOrder(ctx, id, map[string]interface{}{
		"payment_method":    method,
		"payment_reference": reference,
	})
}

func (s *Store) UpdateOrder(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrOrderNotFound
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return services.ErrOrderNotFound
	}
	return nil
}

func (s *Store) ListOrders(ctx context.Context, f services.OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Joins("LEFT JOIN clients ON clients.id = orders.client_id")

	if f.Status != "" {
		query = query.Where("orders.status = ?", f.Status)
	}

	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where(
			"clients.name ILIKE ? OR clients.email ILIKE ? OR array_to_string(orders.document_types, ',') ILIKE ? OR orders.document_type_other ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Client").
		Order("orders.created_at desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (s *Store) ListClients(ctx context.Context, f services.ClientFilter) ([]services.ClientSummary, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Client{})

	if f.Search != "" {
		pattern := likePattern(f.Search)
		query = query.Where("name ILIKE ? OR email ILIKE ? OR whatsapp ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := query.Order("created_at desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}

	type clientStats struct {
		ClientID   uuid.UUID
		OrderCount int64
		TotalSpent int64
	}
	var stats []clientStats
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Order{}).
			Select("client_id, count(*) as order_count, COALESCE(SUM(CASE WHEN payment_confirmed THEN price ELSE 0 END), 0) as total_spent").
			Where("client_id IN ?", ids).
			Group("client_id").
			Scan(&stats).Error; err != nil {
			return nil, 0, err
		}
	}

	statsMap := make(map[uuid.UUID]clientStats, len(stats))
	for _, st := range stats {
		statsMap[st.ClientID] = st
	}

	result := make([]services.ClientSummary, len(clients))
	for i, c := range clients {
		result[i] = services.ClientSummary{Client: c}
		if st, ok := statsMap[c.ID]; ok {
			result[i].OrderCount = st.OrderCount
			result[i].TotalSpent = st.TotalSpent
		}
	}

	return result, total, nil
}

func (s *Store) OrderStats(ctx context.Context) (services.OrderStats, error) {
	var stats services.OrderStats
	conn := s.db.WithContext(ctx)

	if err := conn.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	if err := conn.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return stats, err
	}

	type statusCount struct {
		Status models.OrderStatus
		Count  int64
	}
	var statusCounts []statusCount
	if err := conn.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return stats, err
	}
	stats.OrdersByStatus = make(map[models.OrderStatus]int64, len(statusCounts))
	for _, sc := range statusCounts {
		stats.OrdersByStatus[sc.Status] = sc.Count
	}

	if err := conn.Model(&models.Order{}).
		Where("payment_reference IS NOT NULL AND payment_reference <> '' AND payment_confirmed = ?", false).
		Count(&stats.AwaitingConfirmation).Error; err != nil {
		return stats, err
	}

	if err := conn.Model(&models.Order{}).
		Where("payment_confirmed = ? AND status <> ?", true, models.OrderStatusCancelled).
		Select("COALESCE(SUM(price), 0)").
		Scan(&stats.ConfirmedRevenue).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

// Admin credential

func (s *Store) AdminPasswordHash(ctx context.Context) (string, error) {
	var cred models.AdminCredential
	if err := s.db.WithContext(ctx).First(&cred, "id = ?", models.AdminCredentialID).Error; err != nil {
		return "", notFound(err, services.ErrInvalidCredentials)
	}
	return cred.PasswordHash, nil
}

func (s *Store) SetAdminPasswordHash(ctx context.Context, hash string) error {
	cred := models.AdminCredential{ID: models.AdminCredentialID, PasswordHash: hash}
	return s.db.WithContext(ctx).Save(&cred).Error
}

// Level test questions

func (s *Store) ListQuestions(ctx context.Context, activeOnly bool) ([]models.QuizQuestion, error) {
	query := s.db.WithContext(ctx).Order("display_order asc").Order("created_at asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var items []models.QuizQuestion
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (*models.QuizQuestion, error) {
	var item models.QuizQuestion
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrQuestionNotFound)
	}
	return &item, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	return s.db.WithContext(ctx).Create(q).Error
}

// UpdateQuestion saves every column, including a false is_active.
func (s *Store) UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	return s.db.WithContext(ctx).Save(q).Error
}

func (s *Store) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.QuizQuestion{}, "id = ?", id).Error
}

// Coaching packs

func (s *Store) ListPacks(ctx context.Context) ([]models.CoachingPack, error) {
	var items []models.CoachingPack
	if err := s.db.WithContext(ctx).Order("display_order asc").Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetPack(ctx context.Context, id uuid.UUID) (*models.CoachingPack, error) {
	var item models.CoachingPack
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, services.ErrPackNotFound)
	}
	return &item, nil
}

func (s *Store) CreatePack(ctx context.Context, p *models.CoachingPack) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) UpdatePack(ctx context.Context, p *models.CoachingPack) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *Store) DeletePack(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.CoachingPack{}, "id = ?", id).Error
}

// Site settings

func (s *Store) ListSettings(ctx context.Context) ([]models.SiteSetting, error) {
	var items []models.SiteSetting
	if err := s.db.WithContext(ctx).Order("category asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSettingValues(ctx context.Context, values map[string]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, value := range values {
			result := tx.Model(&models.SiteSetting{}).Where("id = ?", id).Update("value", value)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return services.ErrSettingNotFound
			}
		}
		return nil
	})
}
