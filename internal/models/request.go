package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAssigned  RequestStatus = "assigned"
	RequestStatusCompleted RequestStatus = "completed"
)

// Request is an analytics work ticket. Submitted publicly (status=pending),
// then assigned, due-date-edited, and completed by authenticated admins.
//
// status=pending exactly when AssignedToID is null; status=assigned implies
// AssignedToID and AssignedAt are set; status=completed implies Completed and
// CompletedAt. Due-date edits always leave an EditHistory row behind.
type Request struct {
	BaseModel
	Name         string        `json:"name" gorm:"type:varchar(100);not null"`
	Email        string        `json:"email" gorm:"type:varchar(255);not null"`
	Department   string        `json:"department" gorm:"type:varchar(100);not null"`
	RequestType  string        `json:"requestType" gorm:"type:varchar(100);not null"`
	Description  string        `json:"description" gorm:"type:text;not null"`
	DueDate      time.Time     `json:"dueDate" gorm:"not null"`
	Status       RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AssignedToID *uuid.UUID    `json:"assignedToId,omitempty" gorm:"type:uuid;index"`
	AssignedTo   *Analyst      `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID"`
	AssignedAt   *time.Time    `json:"assignedAt,omitempty"`
	Completed    bool          `json:"completed" gorm:"not null;default:false"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	EditedAt     *time.Time    `json:"editedAt,omitempty"`
}
