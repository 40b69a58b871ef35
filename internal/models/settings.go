package models

import "time"

// SiteSetting is a single editable value shown on the public site
// (phone numbers, payment numbers, translation notes).
type SiteSetting struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	Value     string          `json:"value"`
	Label     string          `json:"label"`
	Category  SettingCategory `gorm:"index" json:"category"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AdminCredentialID is the key of the single back-office credential row.
const AdminCredentialID = "admin_password"

// AdminCredential stores the back-office password hash.
// There should be only one row (singleton pattern).
type AdminCredential struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}
