package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of a translation order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(strings.TrimSpace(raw)); s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Label returns the French display label.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "En attente"
	case OrderStatusInProgress:
		return "En cours"
	case OrderStatusCompleted:
		return "Terminé"
	case OrderStatusCancelled:
		return "Annulé"
	}
	return string(s)
}

// PaymentMethod is a mobile money provider accepted for orders.
type PaymentMethod string

const (
	PaymentWave        PaymentMethod = "wave"
	PaymentOrangeMoney PaymentMethod = "orange_money"
	PaymentMoovMoney   PaymentMethod = "moov_money"
)

// PaymentMethods lists the accepted providers.
var PaymentMethods = []PaymentMethod{PaymentWave, PaymentOrangeMoney, PaymentMoovMoney}

// ParsePaymentMethod validates a raw payment method; "orange-money" is
// accepted as an alias of "orange_money".
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	switch m := PaymentMethod(normalized); m {
	case PaymentWave, PaymentOrangeMoney, PaymentMoovMoney:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", raw)
}

// Label returns the provider's brand name.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentWave:
		return "Wave"
	case PaymentOrangeMoney:
		return "Orange Money"
	case PaymentMoovMoney:
		return "Moov Money"
	}
	return string(m)
}

// Language is a supported translation language code.
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
	LanguageChinese Language = "zh"
	LanguageItalian Language = "it"
	LanguageSpanish Language = "es"
)

// Languages lists the supported languages.
var Languages = []Language{
	LanguageFrench, LanguageEnglish, LanguageGerman,
	LanguageChinese, LanguageItalian, LanguageSpanish,
}

// ParseLanguage validates a raw language code.
func ParseLanguage(raw string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(raw))); l {
	case LanguageFrench, LanguageEnglish, LanguageGerman, LanguageChinese, LanguageItalian, LanguageSpanish:
		return l, nil
	}
	return "", fmt.Errorf("unsupported language %q", raw)
}

// Label returns the French display name.
func (l Language) Label() string {
	switch l {
	case LanguageFrench:
		return "Français"
	case LanguageEnglish:
		return "Anglais"
	case LanguageGerman:
		return "Allemand"
	case LanguageChinese:
		return "Mandarin"
	case LanguageItalian:
		return "Italien"
	case LanguageSpanish:
		return "Espagnol"
	}
	return string(l)
}

// Difficulty is the CEFR level a quiz question targets.
type Difficulty string

const (
	DifficultyA1 Difficulty = "A1"
	DifficultyA2 Difficulty = "A2"
	DifficultyB1 Difficulty = "B1"
	DifficultyB2 Difficulty = "B2"
	DifficultyC1 Difficulty = "C1"
)

// ParseDifficulty validates a raw difficulty value.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(raw))); d {
	case DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2, DifficultyC1:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", raw)
}

// QuestionCategory groups quiz questions by skill.
type QuestionCategory string

const (
	CategoryGrammar    QuestionCategory = "grammar"
	CategoryVocabulary QuestionCategory = "vocabulary"
)

// ParseQuestionCategory validates a raw category value.
func ParseQuestionCategory(raw string) (QuestionCategory, error) {
	switch c := QuestionCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryGrammar, CategoryVocabulary:
		return c, nil
	}
	return "", fmt.Errorf("unknown question category %q", raw)
}

// SettingCategory groups site settings in the back office.
type SettingCategory string

const (
	SettingContact     SettingCategory = "contact"
	SettingPayment     SettingCategory = "payment"
	SettingTranslation SettingCategory = "translation"
)

// ParseSettingCategory validates a raw setting category.
func ParseSettingCategory(raw string) (SettingCategory, error) {
	switch c := SettingCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case SettingContact, SettingPayment, SettingTranslation:
		return c, nil
	}
	return "", fmt.Errorf("unknown setting category %q", raw)
}

// Label returns the back-office section title.
func (c SettingCategory) Label() string {
	switch c {
	case SettingContact:
		return "Informations de contact"
	case SettingPayment:
		return "Numéros de paiement"
	case SettingTranslation:
		return "Traduction"
	}
	return string(c)
}
