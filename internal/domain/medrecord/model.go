package medrecord

import "time"

// MedicalRecord is the running clinical log of one patient. Entries only
// grow: updates append.
type MedicalRecord struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	Entries   string    `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Request struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	Entries   string `json:"entries" validate:"required"`
}

// EntryRequest appends to an existing record.
type EntryRequest struct {
	Entries string `json:"entries" validate:"required"`
}
