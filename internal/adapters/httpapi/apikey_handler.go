package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/usecase"
)

type apiKeyRequest struct {
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	Permissions []string `json:"permissions"`
	HourlyLimit int      `json:"hourly_limit"`
	ExpiresAt   *string  `json:"expires_at"`
}

type apiKeyResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	KeyPrefix   string   `json:"key_prefix"`
	Permissions []string `json:"permissions"`
	Owner       string   `json:"owner"`
	Active      bool     `json:"active"`
	HourlyLimit int      `json:"hourly_limit"`
	ExpiresAt   *string  `json:"expires_at"`
	RevokedAt   *string  `json:"revoked_at"`
	RotatedFrom *string  `json:"rotated_from"`
	LastUsedAt  *string  `json:"last_used_at"`
	UsageCount  int64    `json:"usage_count"`
	CreatedAt   string   `json:"created_at"`
}

type rotationResponse struct {
	ID          uint   `json:"id"`
	OldKeyID    string `json:"old_key_id"`
	NewKeyID    string `json:"new_key_id"`
	GraceEndsAt string `json:"grace_ends_at"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
}

// toAPIKeyResponse never exposes the token hash; the full token itself
// only appears in mint and rotate responses.
func toAPIKeyResponse(k domain.APIKey) apiKeyResponse {
	perms := k.Permissions
	if perms == nil {
		perms = []string{}
	}
	return apiKeyResponse{
		ID:          k.ID,
		Name:        k.Name,
		KeyPrefix:   k.KeyPrefix,
		Permissions: perms,
		Owner:       k.Owner,
		Active:      k.Active,
		HourlyLimit: k.HourlyLimit,
		ExpiresAt:   formatTimePtr(k.ExpiresAt),
		RevokedAt:   formatTimePtr(k.RevokedAt),
		RotatedFrom: k.RotatedFrom,
		LastUsedAt:  formatTimePtr(k.LastUsedAt),
		UsageCount:  k.UsageCount,
		CreatedAt:   formatTime(k.CreatedAt),
	}
}

func toRotationResponse(rot domain.KeyRotation) rotationResponse {
	return rotationResponse{
		ID:          rot.ID,
		OldKeyID:    rot.OldKeyID,
		NewKeyID:    rot.NewKeyID,
		GraceEndsAt: formatTime(rot.GraceEndsAt),
		Completed:   rot.Completed,
		CreatedAt:   formatTime(rot.CreatedAt),
	}
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return
	}
	if err := h.schemas.Validate("api_key", body); err != nil {
		handleDomainError(w, err)
		return
	}

	var req apiKeyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	expires, err := parseDatePtr(req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expires_at must be a date or timestamp")
		return
	}

	key, token, err := h.auth.Mint(r.Context(), usecase.MintKeyInput{
		Name:        req.Name,
		Owner:       req.Owner,
		Permissions: req.Permissions,
		HourlyLimit: req.HourlyLimit,
		ExpiresAt:   expires,
	}, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":   toAPIKeyResponse(key),
		"token": token,
	})
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.auth.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]apiKeyResponse, 0, len(keys))
	for _, key := range keys {
		items = append(items, toAPIKeyResponse(key))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.auth.Revoke(r.Context(), id, metaFromRequest(r)); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

func (h *Handler) rotateAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	key, token, err := h.auth.Rotate(r.Context(), id, h.rotationGrace, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":   toAPIKeyResponse(key),
		"token": token,
	})
}

func (h *Handler) listKeyRotations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rotations, err := h.auth.Rotations(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]rotationResponse, 0, len(rotations))
	for _, rot := range rotations {
		items = append(items, toRotationResponse(rot))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
