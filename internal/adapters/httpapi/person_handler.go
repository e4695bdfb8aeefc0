package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type personRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Title string `json:"title"`
}

type personResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toPersonResponse(p domain.ResponsiblePerson) personResponse {
	return personResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Title:     p.Title,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func (h *Handler) decodePerson(w http.ResponseWriter, r *http.Request) (domain.ResponsiblePerson, bool) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return domain.ResponsiblePerson{}, false
	}
	if err := h.schemas.Validate("responsible_person", body); err != nil {
		handleDomainError(w, err)
		return domain.ResponsiblePerson{}, false
	}

	var req personRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return domain.ResponsiblePerson{}, false
	}
	return domain.ResponsiblePerson{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Title: req.Title,
	}, true
}

func (h *Handler) createPerson(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodePerson(w, r)
	if !ok {
		return
	}
	created, err := h.persons.Create(r.Context(), p, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(created))
}

func (h *Handler) updatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, ok := h.decodePerson(w, r)
	if !ok {
		return
	}
	p.ID = id

	updated, err := h.persons.Update(r.Context(), p, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(updated))
}

func (h *Handler) getPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := h.persons.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

func (h *Handler) deletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.persons.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.persons.ListAll(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]personResponse, 0, len(persons))
	for _, p := range persons {
		items = append(items, toPersonResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
