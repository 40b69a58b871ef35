package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/models"
)

type settingsSection struct {
	Category models.SettingCategory `json:"category"`
	Label    string                 `json:"label"`
	Settings []models.SiteSetting   `json:"settings"`
}

// groupSettings keeps the contact, payment, translation section order.
func groupSettings(settings []models.SiteSetting) []settingsSection {
	order := []models.SettingCategory{models.SettingContact, models.SettingPayment, models.SettingTranslation}
	sections := make([]settingsSection, 0, len(order))
	for _, cat := range order {
		sec := settingsSection{Category: cat, Label: cat.Label(), Settings: []models.SiteSetting{}}
		for _, s := range settings {
			if s.Category == cat {
				sec.Settings = append(sec.Settings, s)
			}
		}
		sections = append(sections, sec)
	}
	return sections
}

// GetSettings returns the site settings (public endpoint).
func (h *ContentHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.content.Settings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     settings,
		"sections": groupSettings(settings),
	})
}

type updateSettingsRequest struct {
	Values map[string]string `json:"values"`
}

// UpdateSettings saves edited setting values (admin endpoint).
func (h *ContentHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	settings, err := h.content.UpdateSettings(c.UserContext(), middleware.GetAdminSession(c), req.Values)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     settings,
		"sections": groupSettings(settings),
	})
}
