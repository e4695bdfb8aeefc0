package domain

const (
	defaultPageLimit = 25
	maxPageLimit     = 200
)

// PageRequest is the common pagination envelope for list endpoints.
type PageRequest struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps page and limit to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
