package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
)

// LevelTestHandler serves the public English level test.
type LevelTestHandler struct {
	content *services.ContentService
}

// NewLevelTestHandler constructs LevelTestHandler.
func NewLevelTestHandler(content *services.ContentService) *LevelTestHandler {
	return &LevelTestHandler{content: content}
}

type levelTestFilter struct {
	Difficulty models.Difficulty
	Category   models.QuestionCategory
}

func parseLevelTestFilter(difficulty, category string) (levelTestFilter, error) {
	var f levelTestFilter
	if difficulty != "" {
		d, err := models.ParseDifficulty(difficulty)
		if err != nil {
			return f, services.NewValidationError("difficulty", "niveau inconnu")
		}
		f.Difficulty = d
	}
	if category != "" {
		cat, err := models.ParseQuestionCategory(category)
		if err != nil {
			return f, services.NewValidationError("category", "catégorie inconnue")
		}
		f.Category = cat
	}
	return f, nil
}

// Questions returns the level test questions without their answers.
func (h *LevelTestHandler) Questions(c *fiber.Ctx) error {
	f, err := parseLevelTestFilter(c.Query("difficulty"), c.Query("category"))
	if err != nil {
		return err
	}
	questions, err := h.content.LevelTestQuestions(c.UserContext(), f.Difficulty, f.Category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    questions,
		"total":   len(questions),
	})
}

type scoreRequest struct {
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Answers    []int  `json:"answers"`
}

// Score replays the answers in order and returns the result and level.
func (h *LevelTestHandler) Score(c *fiber.Ctx) error {
	var req scoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	f, err := parseLevelTestFilter(req.Difficulty, req.Category)
	if err != nil {
		return err
	}
	result, err := h.content.ScoreLevelTest(c.UserContext(), f.Difficulty, f.Category, req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": result})
}
