package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type employeeRequest struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Role       string  `json:"role"`
	NPINumber  string  `json:"npi_number"`
	Status     string  `json:"status"`
	LocationID *uint   `json:"location_id"`
	HiredAt    *string `json:"hired_at"`
}

type employeeResponse struct {
	ID         uint    `json:"id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Role       string  `json:"role"`
	NPINumber  string  `json:"npi_number"`
	Status     string  `json:"status"`
	LocationID *uint   `json:"location_id"`
	HiredAt    *string `json:"hired_at"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toEmployeeResponse(e domain.Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Role:       e.Role,
		NPINumber:  e.NPINumber,
		Status:     string(e.Status),
		LocationID: e.LocationID,
		HiredAt:    formatDatePtr(e.HiredAt),
		CreatedAt:  formatTime(e.CreatedAt),
		UpdatedAt:  formatTime(e.UpdatedAt),
	}
}

func (h *Handler) decodeEmployee(w http.ResponseWriter, r *http.Request) (domain.Employee, bool) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return domain.Employee{}, false
	}
	if err := h.schemas.Validate("employee", body); err != nil {
		handleDomainError(w, err)
		return domain.Employee{}, false
	}

	var req employeeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return domain.Employee{}, false
	}
	hired, err := parseDatePtr(req.HiredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hired_at must be a date")
		return domain.Employee{}, false
	}
	if req.Status == "" {
		req.Status = string(domain.EmployeeActive)
	}

	return domain.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       req.Role,
		NPINumber:  req.NPINumber,
		Status:     domain.EmployeeStatus(req.Status),
		LocationID: req.LocationID,
		HiredAt:    hired,
	}, true
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}

	created, err := h.employees.Create(r.Context(), emp, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	emp, ok := h.decodeEmployee(w, r)
	if !ok {
		return
	}
	emp.ID = id

	updated, err := h.employees.Update(r.Context(), emp, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(updated))
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	emp, err := h.employees.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.employees.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	filter := domain.EmployeeFilter{
		Page:       parsePage(r),
		Status:     domain.EmployeeStatus(r.URL.Query().Get("status")),
		LocationID: parseUintQuery(r, "location_id"),
	}

	employees, total, err := h.employees.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		items = append(items, toEmployeeResponse(emp))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  filter.Page.Page,
		"limit": filter.Page.Limit,
	})
}
