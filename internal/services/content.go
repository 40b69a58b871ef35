package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/speakci/internal/models"
)

// ContentStore holds the site content edited from the back office.
type ContentStore interface {
	ListQuestions(ctx context.Context, activeOnly bool) ([]models.QuizQuestion, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.QuizQuestion, error)
	CreateQuestion(ctx context.Context, q *models.QuizQuestion) error
	UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error

	ListPacks(ctx context.Context) ([]models.CoachingPack, error)
	GetPack(ctx context.Context, id uuid.UUID) (*models.CoachingPack, error)
	CreatePack(ctx context.Context, p *models.CoachingPack) error
	UpdatePack(ctx context.Context, p *models.CoachingPack) error
	DeletePack(ctx context.Context, id uuid.UUID) error

	ListSettings(ctx context.Context) ([]models.SiteSetting, error)
	UpdateSettingValues(ctx context.Context, values map[string]string) error
}

// ContentService serves the level test, coaching packs and site settings.
type ContentService struct {
	store ContentStore
	now   func() time.Time
}

// NewContentService constructs ContentService.
func NewContentService(store ContentStore) *ContentService {
	return &ContentService{store: store, now: time.Now}
}

// LevelTestQuestions returns the active questions matching the filters, in
// display order. The built-in bank is used while no question is stored.
func (s *ContentService) LevelTestQuestions(ctx context.Context, difficulty models.Difficulty, category models.QuestionCategory) ([]Question, error) {
	bank, err := s.store.ListQuestions(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(bank) == 0 {
		bank = DefaultQuestionBank()
	}
	return FilterQuestions(bank, difficulty, category), nil
}

// ScoreLevelTest scores answers given for the questions LevelTestQuestions
// returns with the same filters.
func (s *ContentService) ScoreLevelTest(ctx context.Context, difficulty models.Difficulty, category models.QuestionCategory, answers []int) (Result, error) {
	questions, err := s.LevelTestQuestions(ctx, difficulty, category)
	if err != nil {
		return Result{}, err
	}
	return ScoreAnswers(questions, answers)
}

// Questions lists every stored question.
func (s *ContentService) Questions(ctx context.Context, sess AdminSession) ([]models.QuizQuestion, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, false)
}

// CreateQuestion validates and stores a new question.
func (s *ContentService) CreateQuestion(ctx context.Context, sess AdminSession, q *models.QuizQuestion) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	q.ID = uuid.Nil
	if err := normalizeQuestion(q); err != nil {
		return err
	}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return &PersistenceError{Op: "create question", Err: err}
	}
	return nil
}

// UpdateQuestion replaces a stored question.
func (s *ContentService) UpdateQuestion(ctx context.Context, sess AdminSession, id uuid.UUID, q *models.QuizQuestion) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	existing, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	q.ID = id
	q.CreatedAt = existing.CreatedAt
	if err := normalizeQuestion(q); err != nil {
		return err
	}
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return &PersistenceError{Op: "update question", Err: err}
	}
	return nil
}

// ToggleQuestion flips whether a question is part of the level test.
func (s *ContentService) ToggleQuestion(ctx context.Context, sess AdminSession, id uuid.UUID) (*models.QuizQuestion, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	q.IsActive = !q.IsActive
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return nil, &PersistenceError{Op: "toggle question", Err: err}
	}
	return q, nil
}

// DeleteQuestion removes a question.
func (s *ContentService) DeleteQuestion(ctx context.Context, sess AdminSession, id uuid.UUID) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	if _, err := s.store.GetQuestion(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteQuestion(ctx, id)
}

func normalizeQuestion(q *models.QuizQuestion) error {
	q.Prompt = strings.TrimSpace(q.Prompt)
	q.Sentence = strings.TrimSpace(q.Sentence)
	for i := range q.Options {
		q.Options[i] = strings.TrimSpace(q.Options[i])
	}

	if err := q.Validate(); err != nil {
		switch {
		case errors.Is(err, models.ErrQuestionPromptRequired):
			return NewValidationError("prompt", "la question est requise")
		case errors.Is(err, models.ErrQuestionOptions):
			return NewValidationError("options", "une question doit avoir exactement 4 options non vides")
		case errors.Is(err, models.ErrQuestionCorrectIndex):
			return NewValidationError("correct_index", "la bonne réponse doit être entre 0 et 3")
		}
		return NewValidationError("question", err.Error())
	}

	difficulty, err := models.ParseDifficulty(string(q.Difficulty))
	if err != nil {
		return NewValidationError("difficulty", "niveau inconnu (A1, A2, B1, B2 ou C1)")
	}
	category, err := models.ParseQuestionCategory(string(q.Category))
	if err != nil {
		return NewValidationError("category", "catégorie inconnue (grammar ou vocabulary)")
	}
	q.Difficulty, q.Category = difficulty, category
	return nil
}

// Packs lists the coaching packs in display order.
func (s *ContentService) Packs(ctx context.Context) ([]models.CoachingPack, error) {
	return s.store.ListPacks(ctx)
}

// CreatePack validates and stores a new pack.
func (s *ContentService) CreatePack(ctx context.Context, sess AdminSession, p *models.CoachingPack) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	p.ID = uuid.Nil
	if err := normalizePack(p); err != nil {
		return err
	}
	if err := s.store.CreatePack(ctx, p); err != nil {
		return &PersistenceError{Op: "create pack", Err: err}
	}
	return nil
}

// UpdatePack replaces a stored pack.
func (s *ContentService) UpdatePack(ctx context.Context, sess AdminSession, id uuid.UUID, p *models.CoachingPack) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	existing, err := s.store.GetPack(ctx, id)
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	if err := normalizePack(p); err != nil {
		return err
	}
	if err := s.store.UpdatePack(ctx, p); err != nil {
		return &PersistenceError{Op: "update pack", Err: err}
	}
	return nil
}

// DeletePack removes a pack.
func (s *ContentService) DeletePack(ctx context.Context, sess AdminSession, id uuid.UUID) error {
	if err := sess.Check(s.now()); err != nil {
		return err
	}
	if _, err := s.store.GetPack(ctx, id); err != nil {
		return err
	}
	return s.store.DeletePack(ctx, id)
}

func normalizePack(p *models.CoachingPack) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Duration = strings.TrimSpace(p.Duration)
	if p.Title == "" {
		return NewValidationError("title", "le titre est requis")
	}
	if p.Price < 0 {
		return NewValidationError("price", "le prix ne peut pas être négatif")
	}

	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	p.Features = features
	return nil
}

// Settings lists the site settings.
func (s *ContentService) Settings(ctx context.Context) ([]models.SiteSetting, error) {
	return s.store.ListSettings(ctx)
}

// UpdateSettings changes the values of existing settings. Unknown ids are
// rejected and nothing is written.
func (s *ContentService) UpdateSettings(ctx context.Context, sess AdminSession, values map[string]string) ([]models.SiteSetting, error) {
	if err := sess.Check(s.now()); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, NewValidationError("settings", "aucun paramètre à mettre à jour")
	}

	current, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(current))
	for _, st := range current {
		known[st.ID] = struct{}{}
	}

	clean := make(map[string]string, len(values))
	for id, v := range values {
		if _, ok := known[id]; !ok {
			return nil, NewValidationError("settings", "paramètre inconnu : "+id)
		}
		clean[id] = strings.TrimSpace(v)
	}

	if err := s.store.UpdateSettingValues(ctx, clean); err != nil {
		return nil, &PersistenceError{Op: "update settings", Err: err}
	}
	return s.store.ListSettings(ctx)
}

// DefaultSettings are created on first boot.
func DefaultSettings(whatsApp string) []models.SiteSetting {
	return []models.SiteSetting{
		{ID: "contact_whatsapp", Value: whatsApp, Label: "Numéro WhatsApp", Category: models.SettingContact},
		{ID: "contact_email", Value: "contact@speakenglishci.com", Label: "Email de contact", Category: models.SettingContact},
		{ID: "contact_address", Value: "Abidjan, Côte d'Ivoire", Label: "Adresse", Category: models.SettingContact},
		{ID: "payment_wave", Value: "", Label: "Numéro Wave", Category: models.SettingPayment},
		{ID: "payment_orange_money", Value: "", Label: "Numéro Orange Money", Category: models.SettingPayment},
		{ID: "payment_moov_money", Value: "", Label: "Numéro Moov Money", Category: models.SettingPayment},
		{ID: "translation_notice", Value: "Traductions certifiées livrées par email et WhatsApp.", Label: "Message d'information", Category: models.SettingTranslation},
	}
}
