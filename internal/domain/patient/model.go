package patient

import "time"

type Patient struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	NationalID      string    `json:"national_id"`
	BirthDate       time.Time `json:"birth_date"`
	ClinicalHistory string    `json:"clinical_history"`
	// Username links the patient to the login account that owns the record.
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request is the create/update body. NationalID is ignored on update.
type Request struct {
	Name            string    `json:"name" validate:"required,max=100"`
	NationalID      string    `json:"national_id" validate:"required,numeric,len=11"`
	BirthDate       time.Time `json:"birth_date" validate:"required,past"`
	ClinicalHistory string    `json:"clinical_history" validate:"required"`
}

func (r Request) toPatient() *Patient {
	return &Patient{
		Name:            r.Name,
		NationalID:      r.NationalID,
		BirthDate:       r.BirthDate,
		ClinicalHistory: r.ClinicalHistory,
	}
}
