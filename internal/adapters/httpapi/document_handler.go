package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type documentRequest struct {
	Title       string  `json:"title"`
	Kind        string  `json:"kind"`
	LicenseID   *uint   `json:"license_id"`
	LocationID  *uint   `json:"location_id"`
	FileName    string  `json:"file_name"`
	ContentType string  `json:"content_type"`
	Content     string  `json:"content"`
	EffectiveAt *string `json:"effective_at"`
	ExpiresAt   *string `json:"expires_at"`
}

type documentResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Kind        string  `json:"kind"`
	LicenseID   *uint   `json:"license_id"`
	LocationID  *uint   `json:"location_id"`
	FileName    string  `json:"file_name"`
	ContentType string  `json:"content_type"`
	ByteSize    int64   `json:"byte_size"`
	SHA256      string  `json:"sha256"`
	UploadedBy  string  `json:"uploaded_by"`
	EffectiveAt *string `json:"effective_at"`
	ExpiresAt   *string `json:"expires_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toDocumentResponse(d domain.ComplianceDocument) documentResponse {
	return documentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Kind:        d.Kind,
		LicenseID:   d.LicenseID,
		LocationID:  d.LocationID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		ByteSize:    d.ByteSize,
		SHA256:      d.SHA256,
		UploadedBy:  d.UploadedBy,
		EffectiveAt: formatDatePtr(d.EffectiveAt),
		ExpiresAt:   formatDatePtr(d.ExpiresAt),
		CreatedAt:   formatTime(d.CreatedAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
	}
}

func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxDocumentBodySize)
	if !ok {
		return
	}
	if err := h.schemas.Validate("document", body); err != nil {
		handleDomainError(w, err)
		return
	}

	var req documentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content must be base64 encoded")
		return
	}
	if int64(len(content)) > domain.MaxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "document exceeds maximum size")
		return
	}
	effective, err := parseDatePtr(req.EffectiveAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "effective_at must be a date")
		return
	}
	expires, err := parseDatePtr(req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expires_at must be a date")
		return
	}

	meta := metaFromRequest(r)
	doc := domain.ComplianceDocument{
		Title:       req.Title,
		Kind:        req.Kind,
		LicenseID:   req.LicenseID,
		LocationID:  req.LocationID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		UploadedBy:  meta.Actor,
		EffectiveAt: effective,
		ExpiresAt:   expires,
	}

	created, err := h.documents.Upload(r.Context(), doc, content, meta)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(created))
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) downloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, content, err := h.documents.Content(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.documents.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter := domain.DocumentFilter{
		Page:       parsePage(r),
		Kind:       r.URL.Query().Get("kind"),
		LicenseID:  parseUintQuery(r, "license_id"),
		LocationID: parseUintQuery(r, "location_id"),
	}

	docs, total, err := h.documents.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  filter.Page.Page,
		"limit": filter.Page.Limit,
	})
}
