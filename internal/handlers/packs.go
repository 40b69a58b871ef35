package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
)

// ContentHandler manages coaching packs, site settings and the question bank.
type ContentHandler struct {
	content *services.ContentService
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// Coaching packs

func (h *ContentHandler) ListPacks(c *fiber.Ctx) error {
	items, err := h.content.Packs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *ContentHandler) CreatePack(c *fiber.Ctx) error {
	var item models.CoachingPack
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.content.CreatePack(c.UserContext(), middleware.GetAdminSession(c), &item); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *ContentHandler) UpdatePack(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var item models.CoachingPack
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.content.UpdatePack(c.UserContext(), middleware.GetAdminSession(c), id, &item); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *ContentHandler) DeletePack(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.content.DeletePack(c.UserContext(), middleware.GetAdminSession(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
