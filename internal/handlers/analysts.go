package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

type AnalystsHandler struct {
	DB *gorm.DB
}

func NewAnalystsHandler(db *gorm.DB) *AnalystsHandler {
	return &AnalystsHandler{DB: db}
}

func (h *AnalystsHandler) List(c *fiber.Ctx) error {
	var analysts []models.Analyst
	err := h.DB.Where("active = ?", true).Order("name ASC").Find(&analysts).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing analysts")
	}

	return utils.Success(c, fiber.StatusOK, analysts)
}
