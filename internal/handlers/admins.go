package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

type AdminsHandler struct {
	DB *gorm.DB
}

func NewAdminsHandler(db *gorm.DB) *AdminsHandler {
	return &AdminsHandler{DB: db}
}

// List returns every active admin, name-ordered. Used by the login screen's
// admin selector, so it is intentionally public.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	var admins []models.Admin
	err := h.DB.Where("active = ?", true).Order("name ASC").Find(&admins).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing admins")
	}

	return utils.Success(c, fiber.StatusOK, admins)
}
