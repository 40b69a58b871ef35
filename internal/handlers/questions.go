package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/models"
)

// ListQuestions returns the whole question bank, inactive questions included.
func (h *ContentHandler) ListQuestions(c *fiber.Ctx) error {
	items, err := h.content.Questions(c.UserContext(), middleware.GetAdminSession(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

func (h *ContentHandler) CreateQuestion(c *fiber.Ctx) error {
	var item models.QuizQuestion
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.content.CreateQuestion(c.UserContext(), middleware.GetAdminSession(c), &item); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *ContentHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var item models.QuizQuestion
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.content.UpdateQuestion(c.UserContext(), middleware.GetAdminSession(c), id, &item); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// ToggleQuestion flips whether a question appears in the level test.
func (h *ContentHandler) ToggleQuestion(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.content.ToggleQuestion(c.UserContext(), middleware.GetAdminSession(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *ContentHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.content.DeleteQuestion(c.UserContext(), middleware.GetAdminSession(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
