package model

import "time"

// User mirrors a row of the users table.  PasswordHash never leaves the
// server.
type User struct {
    ID                 uint64    `json:"id"`
    FirstName          string    `json:"firstName"`
    LastName           string    `json:"lastName"`
    Email              string    `json:"email"`
    PasswordHash       string    `json:"-"`
    Phone              string    `json:"phone"`
    Role               Role      `json:"role"`
    IsActive           bool      `json:"isActive"`
    MustChangePassword bool      `json:"mustChangePassword"`
    CreatedAt          time.Time `json:"createdAt"`
    CoachID            *uint64   `json:"coachId,omitempty"`
}

// Coach is the profile row owned by a COACH user.
type Coach struct {
    ID     uint64 `json:"id"`
    UserID uint64 `json:"userId"`
}

// CoachDetails is a coach profile with its resolved associations.
type CoachDetails struct {
    Coach
    Sports         []Sport         `json:"sports"`
    Qualifications []Qualification `json:"qualifications"`
}
