package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type locationRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	ParentID *uint  `json:"parent_id"`
	Active   *bool  `json:"active"`
}

type locationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	ParentID  *uint  `json:"parent_id"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type locationNodeResponse struct {
	locationResponse
	Children []locationNodeResponse `json:"children"`
}

func toLocationResponse(l domain.Location) locationResponse {
	return locationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Kind:      string(l.Kind),
		Address:   l.Address,
		City:      l.City,
		State:     l.State,
		Zip:       l.Zip,
		ParentID:  l.ParentID,
		Active:    l.Active,
		CreatedAt: formatTime(l.CreatedAt),
		UpdatedAt: formatTime(l.UpdatedAt),
	}
}

func toLocationNodeResponse(n domain.LocationNode) locationNodeResponse {
	node := locationNodeResponse{
		locationResponse: toLocationResponse(n.Location),
		Children:         []locationNodeResponse{},
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, toLocationNodeResponse(child))
	}
	return node
}

func (h *Handler) decodeLocation(w http.ResponseWriter, r *http.Request) (domain.Location, bool) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return domain.Location{}, false
	}
	if err := h.schemas.Validate("location", body); err != nil {
		handleDomainError(w, err)
		return domain.Location{}, false
	}

	var req locationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return domain.Location{}, false
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return domain.Location{
		Name:     req.Name,
		Kind:     domain.LocationKind(req.Kind),
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Zip:      req.Zip,
		ParentID: req.ParentID,
		Active:   active,
	}, true
}

func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.decodeLocation(w, r)
	if !ok {
		return
	}

	created, err := h.locations.Create(r.Context(), loc, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLocationResponse(created))
}

func (h *Handler) updateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loc, ok := h.decodeLocation(w, r)
	if !ok {
		return
	}
	loc.ID = id

	updated, err := h.locations.Update(r.Context(), loc, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(updated))
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	loc, err := h.locations.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(loc))
}

func (h *Handler) deleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.locations.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// listLocations returns the flat list by default; ?view=tree nests
// children under their parents.
func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("view") == "tree" {
		tree, err := h.locations.ListTree(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		items := make([]locationNodeResponse, 0, len(tree))
		for _, node := range tree {
			items = append(items, toLocationNodeResponse(node))
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	locs, err := h.locations.ListFlat(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]locationResponse, 0, len(locs))
	for _, loc := range locs {
		items = append(items, toLocationResponse(loc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
