package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/speakci/internal/services"
)

// ErrorHandler renders every error returned by a handler as
// {"success": false, "error": "..."} with a matching status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, fiber.Map) {
	var (
		fiberErr   *fiber.Error
		validation *services.ValidationError
		upload     *services.UploadError
		persist    *services.PersistenceError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, failure(fiberErr.Message)
	case errors.As(err, &validation):
		body := failure(validation.Message)
		if validation.Field != "" {
			body["field"] = validation.Field
		}
		return fiber.StatusBadRequest, body
	case errors.As(err, &upload):
		return fiber.StatusBadGateway, failure("l'envoi des fichiers a échoué, veuillez réessayer")
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, failure(err.Error())
	case errors.As(err, &persist):
		return fiber.StatusInternalServerError, failure("l'enregistrement a échoué, veuillez réessayer")
	case errors.Is(err, services.ErrSessionExpired):
		return fiber.StatusUnauthorized, failure("session expirée, veuillez vous reconnecter")
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, failure("mot de passe incorrect")
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict, failure(err.Error())
	case errors.Is(err, services.ErrEmptyBank),
		errors.Is(err, services.ErrOutOfSequence),
		errors.Is(err, services.ErrAttemptComplete),
		errors.Is(err, services.ErrAttemptIncomplete),
		errors.Is(err, services.ErrInvalidOption):
		return fiber.StatusBadRequest, failure(err.Error())
	}
	return fiber.StatusInternalServerError, failure("internal server error")
}

func failure(msg string) fiber.Map {
	return fiber.Map{"success": false, "error": msg}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
