package appointment

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

type Appointment struct {
	ID             int64     `json:"id"`
	PatientID      int64     `json:"patient_id"`
	PractitionerID int64     `json:"practitioner_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Request books a new appointment, which must be in the future.
type Request struct {
	PatientID      int64     `json:"patient_id" validate:"required,gt=0"`
	PractitionerID int64     `json:"practitioner_id" validate:"required,gt=0"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required,future"`
	Status         string    `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
	Notes          string    `json:"notes" validate:"max=1000"`
}

// UpdateRequest changes an existing appointment. The date may be in the
// past so that a held appointment can be marked COMPLETED.
type UpdateRequest struct {
	PatientID      int64     `json:"patient_id" validate:"required,gt=0"`
	PractitionerID int64     `json:"practitioner_id" validate:"required,gt=0"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	Status         string    `json:"status" validate:"required,oneof=SCHEDULED COMPLETED CANCELLED"`
	Notes          string    `json:"notes" validate:"max=1000"`
}

func normalizeStatus(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StatusScheduled
	}
	return s
}
