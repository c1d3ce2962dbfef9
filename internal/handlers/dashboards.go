package handlers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dashboardConfigID = "main"

type DashboardsHandler struct {
	DB *gorm.DB
}

func NewDashboardsHandler(db *gorm.DB) *DashboardsHandler {
	return &DashboardsHandler{DB: db}
}

func (h *DashboardsHandler) loadConfig() (map[string]models.DashboardCategory, error) {
	var record models.DashboardConfig
	err := h.DB.First(&record, "id = ?", dashboardConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]models.DashboardCategory{}, nil
	}
	if err != nil {
		return nil, err
	}
	if record.Data == nil {
		return map[string]models.DashboardCategory{}, nil
	}
	return record.Data, nil
}

func (h *DashboardsHandler) saveConfig(data map[string]models.DashboardCategory) error {
	record := models.DashboardConfig{ID: dashboardConfigID, Data: data}
	return h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&record).Error
}

func (h *DashboardsHandler) Get(c *fiber.Ctx) error {
	config, err := h.loadConfig()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading dashboard config")
	}
	return c.Status(fiber.StatusOK).JSON(config)
}

type addDashboardRequest struct {
	CategoryID    string `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	DashboardName string `json:"dashboardName"`
	DashboardURL  string `json:"dashboardUrl"`
}

func (h *DashboardsHandler) Add(c *fiber.Ctx) error {
	var req addDashboardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.CategoryID == "" || req.DashboardName == "" || req.DashboardURL == "" {
		return utils.Error(c, fiber.StatusBadRequest,
			"categoryId, dashboardName, and dashboardUrl are required")
	}

	config, err := h.loadConfig()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading dashboard config")
	}

	category, exists := config[req.CategoryID]
	if !exists {
		if req.CategoryName == "" {
			return utils.Error(c, fiber.StatusBadRequest,
				"categoryName is required for new categories")
		}
		category = models.DashboardCategory{Name: req.CategoryName}
	}

	dashboardID := slugify(req.DashboardName)
	category.Dashboards = append(category.Dashboards, models.Dashboard{
		ID:   dashboardID,
		Name: req.DashboardName,
		URL:  req.DashboardURL,
	})
	config[req.CategoryID] = category

	if err := h.saveConfig(config); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to add dashboard")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"dashboardId": dashboardID})
}

type removeDashboardRequest struct {
	CategoryID  string `json:"categoryId"`
	DashboardID string `json:"dashboardId"`
}

func (h *DashboardsHandler) Remove(c *fiber.Ctx) error {
	var req removeDashboardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.CategoryID == "" || req.DashboardID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "categoryId and dashboardId are required")
	}

	config, err := h.loadConfig()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading dashboard config")
	}

	category, exists := config[req.CategoryID]
	if !exists {
		return utils.Error(c, fiber.StatusNotFound, "category not found")
	}

	remaining := category.Dashboards[:0]
	for _, dashboard := range category.Dashboards {
		if dashboard.ID != req.DashboardID {
			remaining = append(remaining, dashboard)
		}
	}
	category.Dashboards = remaining

	// Categories do not outlive their last dashboard.
	if len(category.Dashboards) == 0 {
		delete(config, req.CategoryID)
	} else {
		config[req.CategoryID] = category
	}

	if err := h.saveConfig(config); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to remove dashboard")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "dashboard removed"})
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugCleaner.ReplaceAllString(slug, "")
	return slugSpaces.ReplaceAllString(slug, "-")
}
