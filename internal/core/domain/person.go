package domain

import "time"

// ResponsiblePerson is the individual accountable for a license's renewal
// and compliance status.
type ResponsiblePerson struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p ResponsiblePerson) Validate() error {
	var ve ValidationError
	if p.Name == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "name", Message: "required"})
	}
	if p.Email != "" && !emailPattern.MatchString(p.Email) {
		ve.Fields = append(ve.Fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}
