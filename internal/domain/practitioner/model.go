package practitioner

import "time"

// Practitioner is a health professional who can be booked for
// appointments.
type Practitioner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	License   string    `json:"license"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Request struct {
	Name      string `json:"name" validate:"required,max=100"`
	Specialty string `json:"specialty" validate:"required,max=50"`
	License   string `json:"license" validate:"required,max=20,alphanum"`
}
