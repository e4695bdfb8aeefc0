package domain

import (
	"regexp"
	"time"
)

type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeOnLeave    EmployeeStatus = "on_leave"
	EmployeeTerminated EmployeeStatus = "terminated"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Employee struct {
	ID         uint
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	NPINumber  string
	Status     EmployeeStatus
	LocationID *uint
	HiredAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) Validate() error {
	var ve ValidationError
	if e.FirstName == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "first_name", Message: "required"})
	}
	if e.LastName == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "last_name", Message: "required"})
	}
	if e.Email == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "email", Message: "required"})
	} else if !emailPattern.MatchString(e.Email) {
		ve.Fields = append(ve.Fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	switch e.Status {
	case EmployeeActive, EmployeeOnLeave, EmployeeTerminated:
	default:
		ve.Fields = append(ve.Fields, FieldError{Field: "status", Message: "must be one of active, on_leave, terminated"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Page       PageRequest
	Status     EmployeeStatus
	LocationID *uint
}
