package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/insightdesk/backend/internal/middleware"
	"github.com/insightdesk/backend/internal/services"
	"github.com/insightdesk/backend/pkg/utils"
)

type RequestsHandler struct {
	Requests *services.RequestService
}

func NewRequestsHandler(requests *services.RequestService) *RequestsHandler {
	return &RequestsHandler{Requests: requests}
}

func (h *RequestsHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	status := c.Query("status")

	requests, total, err := h.Requests.List(status, p)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing requests")
	}

	return utils.Paginated(c, requests, p.Page, p.Limit, total)
}

func (h *RequestsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Requests.Stats()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed computing stats")
	}

	return utils.Success(c, fiber.StatusOK, stats)
}

type createRequestRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	RequestType string `json:"requestType"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// Create is the public submission endpoint; no session required.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	var req createRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.Requests.Create(services.CreateRequestInput{
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		RequestType: req.RequestType,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return serviceError(c, err, "failed to create request")
	}

	return utils.Success(c, fiber.StatusCreated, request)
}

type assignRequestRequest struct {
	AnalystID string `json:"analystId"`
	Notes     string `json:"notes"`
}

func (h *RequestsHandler) Assign(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	var req assignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	analystID, err := parseUUID(req.AnalystID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid analyst id")
	}

	request, err := h.Requests.Assign(requestID, analystID, req.Notes)
	if err != nil {
		return serviceError(c, err, "failed to assign request")
	}

	return utils.Success(c, fiber.StatusOK, request)
}

type editRequestRequest struct {
	DueDate string `json:"dueDate"`
	Reason  string `json:"reason"`
}

func (h *RequestsHandler) Edit(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if session == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	var req editRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.Requests.Edit(requestID, req.DueDate, req.Reason, session.Email)
	if err != nil {
		return serviceError(c, err, "failed to update request")
	}

	return utils.Success(c, fiber.StatusOK, request)
}

func (h *RequestsHandler) Complete(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	request, err := h.Requests.Complete(requestID)
	if err != nil {
		return serviceError(c, err, "failed to complete request")
	}

	return utils.Success(c, fiber.StatusOK, request)
}

func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := h.Requests.Delete(requestID); err != nil {
		return serviceError(c, err, "failed to delete request")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "request deleted",
	})
}

// Export streams a CSV of requests created within the optional
// startDate/endDate window (inclusive on both ends).
func (h *RequestsHandler) Export(c *fiber.Ctx) error {
	var start, end time.Time
	startParam := c.Query("startDate")
	endParam := c.Query("endDate")

	if startParam != "" || endParam != "" {
		var err error
		if start, err = services.ParseDate(startParam); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid startDate")
		}
		if end, err = services.ParseEndDate(endParam); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid endDate")
		}
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(
		`attachment; filename="requests-export-%s.csv"`,
		time.Now().Format(time.DateOnly),
	))

	var buf bytes.Buffer
	if err := h.Requests.ExportCSV(&buf, start, end); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to export requests")
	}

	return c.Send(buf.Bytes())
}
