package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/pkg/logger"
	"github.com/insightdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

// RequestService owns the ticket state machine: pending → assigned →
// completed, with due-date edits recorded in an immutable history and
// deletion cascading over that history. All mutations commit synchronously;
// the emails they trigger are fire-and-forget through the Notifier.
type RequestService struct {
	DB       *gorm.DB
	Notifier *Notifier

	// StrictTransitions rejects assign/complete on an already-completed
	// request. The permissive default mirrors the portal's historical
	// behavior.
	StrictTransitions bool
}

func NewRequestService(db *gorm.DB, notifier *Notifier, strict bool) *RequestService {
	return &RequestService{DB: db, Notifier: notifier, StrictTransitions: strict}
}

type CreateRequestInput struct {
	Name        string
	Email       string
	Department  string
	RequestType string
	Description string
	DueDate     string
}

// Create registers a public submission. Requests always start pending and
// unassigned; admins and the requester are notified asynchronously, and a
// failed notification never fails the submission.
func (s *RequestService) Create(input CreateRequestInput) (*models.Request, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "name is required")
	}
	email := NormalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("email", "invalid email address")
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		return nil, validationError("department", "department is required")
	}
	requestType := strings.TrimSpace(input.RequestType)
	if requestType == "" {
		return nil, validationError("requestType", "request type is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, validationError("description", "description is required")
	}
	dueDate, err := ParseDate(input.DueDate)
	if err != nil {
		return nil, validationError("dueDate", "invalid due date")
	}

	request := models.Request{
		Name:        name,
		Email:       email,
		Department:  department,
		RequestType: requestType,
		Description: description,
		DueDate:     dueDate,
		Status:      models.RequestStatusPending,
	}

	if err := s.DB.Create(&request).Error; err != nil {
		return nil, err
	}

	var admins []models.Admin
	if err := s.DB.Where("active = ?", true).Find(&admins).Error; err != nil {
		logger.Error("request_admin_lookup_failed", err, map[string]interface{}{
			"request_id": request.ID.String(),
		})
	} else {
		s.Notifier.SendNewRequest(&request, admins)
	}
	s.Notifier.SendConfirmation(&request)

	logger.Info("request_created", map[string]interface{}{
		"request_id": request.ID.String(),
		"department": request.Department,
		"type":       request.RequestType,
	})

	return &request, nil
}

// Assign moves a request to an analyst. Both rows must exist; under strict
// transitions a completed request can no longer be assigned.
func (s *RequestService) Assign(requestID, analystID uuid.UUID, notes string) (*models.Request, error) {
	var request models.Request
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("request")
		}
		return nil, err
	}

	var analyst models.Analyst
	if err := s.DB.First(&analyst, "id = ?", analystID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("analyst")
		}
		return nil, err
	}

	if s.StrictTransitions && request.Status == models.RequestStatusCompleted {
		return nil, fmt.Errorf("request already completed: %w", ErrConflict)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"assigned_to_id": analystID,
		"status":         models.RequestStatusAssigned,
		"assigned_at":    now,
	}
	if err := s.DB.Model(&request).Updates(updates).Error; err != nil {
		return nil, err
	}

	request.AssignedToID = &analystID
	request.AssignedTo = &analyst
	request.Status = models.RequestStatusAssigned
	request.AssignedAt = &now

	s.Notifier.SendAssignment(&request, &analyst, notes)

	logger.Info("request_assigned", map[string]interface{}{
		"request_id": request.ID.String(),
		"analyst_id": analyst.ID.String(),
	})

	return &request, nil
}

// Edit changes the due date and appends the audit record in one transaction:
// either both land or neither does.
func (s *RequestService) Edit(requestID uuid.UUID, newDueDate, reason, editorEmail string) (*models.Request, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("reason", "reason for change is required")
	}
	newDate, err := ParseDate(newDueDate)
	if err != nil {
		return nil, validationError("dueDate", "invalid due date")
	}

	var request models.Request
	var oldDate time.Time
	reason = strings.TrimSpace(reason)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("request")
			}
			return err
		}

		oldDate = request.DueDate
		now := time.Now().UTC()

		if err := tx.Model(&request).Updates(map[string]interface{}{
			"due_date":  newDate,
			"edited_at": now,
		}).Error; err != nil {
			return err
		}

		history := models.EditHistory{
			RequestID: request.ID,
			EditedBy:  editorEmail,
			OldDate:   oldDate,
			NewDate:   newDate,
			Reason:    reason,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		request.DueDate = newDate
		request.EditedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.SendDueDateChange(&request, oldDate, newDate, reason)

	logger.Info("request_due_date_edited", map[string]interface{}{
		"request_id": request.ID.String(),
		"edited_by":  editorEmail,
	})

	return &request, nil
}

// Complete marks a request done. Permissive by default: the portal lets an
// admin complete a pending or already-completed request.
func (s *RequestService) Complete(requestID uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("request")
		}
		return nil, err
	}

	if s.StrictTransitions && request.Status == models.RequestStatusCompleted {
		return nil, fmt.Errorf("request already completed: %w", ErrConflict)
	}

	now := time.Now().UTC()
	if err := s.DB.Model(&request).Updates(map[string]interface{}{
		"completed":    true,
		"status":       models.RequestStatusCompleted,
		"completed_at": now,
	}).Error; err != nil {
		return nil, err
	}

	request.Completed = true
	request.Status = models.RequestStatusCompleted
	request.CompletedAt = &now

	s.Notifier.SendCompletion(&request)

	logger.Info("request_completed", map[string]interface{}{
		"request_id": request.ID.String(),
	})

	return &request, nil
}

// Delete removes a request and its edit history atomically, history first so
// no orphaned rows survive.
func (s *RequestService) Delete(requestID uuid.UUID) error {
	var request models.Request
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("request")
		}
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).Delete(&models.EditHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Request{}, "id = ?", requestID).Error
	})
	if err != nil {
		return err
	}

	logger.Info("request_deleted", map[string]interface{}{
		"request_id": requestID.String(),
	})

	return nil
}

// List returns requests newest first, optionally filtered by status.
func (s *RequestService) List(status string, p utils.PaginationParams) ([]models.Request, int64, error) {
	query := s.DB.Model(&models.Request{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.Request
	err := utils.ApplyPagination(query.Preload("AssignedTo").Order("created_at DESC"), p).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

type RequestStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Assigned  int64 `json:"assigned"`
	Completed int64 `json:"completed"`
}

func (s *RequestService) Stats() (*RequestStats, error) {
	var stats RequestStats
	if err := s.DB.Model(&models.Request{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := map[models.RequestStatus]*int64{
		models.RequestStatusPending:   &stats.Pending,
		models.RequestStatusAssigned:  &stats.Assigned,
		models.RequestStatusCompleted: &stats.Completed,
	}
	for status, dest := range counts {
		if err := s.DB.Model(&models.Request{}).Where("status = ?", status).Count(dest).Error; err != nil {
			return nil, err
		}
	}

	return &stats, nil
}

var exportHeader = []string{
	"ID", "Name", "Email", "Department", "Request Type", "Description",
	"Status", "Assigned To", "Due Date", "Created At", "Assigned At",
	"Completed At", "Completed",
}

// ExportCSV streams every request created within [start, end] (inclusive) as
// CSV. Zero start/end disables the window filter. encoding/csv handles the
// quoting of free-text fields.
func (s *RequestService) ExportCSV(w io.Writer, start, end time.Time) error {
	query := s.DB.Preload("AssignedTo").Order("created_at DESC")
	if !start.IsZero() && !end.IsZero() {
		query = query.Where("created_at >= ? AND created_at <= ?", start, end)
	}

	var requests []models.Request
	if err := query.Find(&requests).Error; err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, req := range requests {
		assignedTo := "Not Assigned"
		if req.AssignedTo != nil {
			assignedTo = req.AssignedTo.Name
		}
		completed := "No"
		if req.Completed {
			completed = "Yes"
		}
		row := []string{
			req.ID.String(),
			req.Name,
			req.Email,
			req.Department,
			req.RequestType,
			req.Description,
			string(req.Status),
			assignedTo,
			req.DueDate.Format(time.RFC3339),
			req.CreatedAt.Format(time.RFC3339),
			formatOptionalTime(req.AssignedAt),
			formatOptionalTime(req.CompletedAt),
			completed,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ParseDate accepts RFC3339 timestamps and bare dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

// ParseEndDate parses like ParseDate but pushes a bare date to the end of
// that day, so a date-only window stays inclusive of its last day.
func ParseEndDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, strings.TrimSpace(value)); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return ParseDate(value)
}
