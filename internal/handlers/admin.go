package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/models"
	"github.com/example/speakci/internal/services"
	"github.com/example/speakci/internal/utils"
)

// AdminHandler manages the back-office order and client endpoints.
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.admin.DashboardStats(c.UserContext(), middleware.GetAdminSession(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// ListOrders returns orders with pagination, status filter and search.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := services.OrderFilter{
		Search: c.Query("search"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			return services.NewValidationError("status", "statut inconnu")
		}
		filter.Status = status
	}

	orders, total, err := h.admin.ListOrders(c.UserContext(), middleware.GetAdminSession(c), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns one order with its client.
func (h *AdminHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.admin.GetOrder(c.UserContext(), middleware.GetAdminSession(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order to another status.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	order, err := h.admin.UpdateOrderStatus(c.UserContext(), middleware.GetAdminSession(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// UploadTranslatedFile attaches the translated PDF to an order.
func (h *AdminHandler) UploadTranslatedFile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return services.NewValidationError("file", "veuillez joindre le fichier traduit")
	}
	order, err := h.admin.AttachTranslatedFile(c.UserContext(), middleware.GetAdminSession(c), id, uploadedFile(fh))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ConfirmPayment marks the payment of an order as received.
func (h *AdminHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.admin.ConfirmPayment(c.UserContext(), middleware.GetAdminSession(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DeleteOrder removes an order.
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteOrder(c.UserContext(), middleware.GetAdminSession(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListClients returns clients with their order count and confirmed spend.
func (h *AdminHandler) ListClients(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	clients, total, err := h.admin.ListClients(c.UserContext(), middleware.GetAdminSession(c), services.ClientFilter{
		Search: c.Query("search"),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       clients,
		"pagination": pg.Meta(total),
	})
}
