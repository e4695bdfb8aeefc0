package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type licenseTypeRequest struct {
	Name               string `json:"name"`
	Category           string `json:"category"`
	RenewalPeriodMonth int    `json:"renewal_period_months"`
	Description        string `json:"description"`
}

type licenseTypeResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	RenewalPeriodMonth int    `json:"renewal_period_months"`
	Description        string `json:"description"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func toLicenseTypeResponse(t domain.LicenseType) licenseTypeResponse {
	return licenseTypeResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Category:           string(t.Category),
		RenewalPeriodMonth: t.RenewalPeriodMonth,
		Description:        t.Description,
		CreatedAt:          formatTime(t.CreatedAt),
		UpdatedAt:          formatTime(t.UpdatedAt),
	}
}

func (h *Handler) decodeLicenseType(w http.ResponseWriter, r *http.Request) (domain.LicenseType, bool) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return domain.LicenseType{}, false
	}
	if err := h.schemas.Validate("license_type", body); err != nil {
		handleDomainError(w, err)
		return domain.LicenseType{}, false
	}

	var req licenseTypeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return domain.LicenseType{}, false
	}
	return domain.LicenseType{
		Name:               req.Name,
		Category:           domain.LicenseCategory(req.Category),
		RenewalPeriodMonth: req.RenewalPeriodMonth,
		Description:        req.Description,
	}, true
}

func (h *Handler) createLicenseType(w http.ResponseWriter, r *http.Request) {
	lt, ok := h.decodeLicenseType(w, r)
	if !ok {
		return
	}
	created, err := h.types.Create(r.Context(), lt, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLicenseTypeResponse(created))
}

func (h *Handler) updateLicenseType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lt, ok := h.decodeLicenseType(w, r)
	if !ok {
		return
	}
	lt.ID = id

	updated, err := h.types.Update(r.Context(), lt, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLicenseTypeResponse(updated))
}

func (h *Handler) getLicenseType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lt, err := h.types.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLicenseTypeResponse(lt))
}

func (h *Handler) deleteLicenseType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.types.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listLicenseTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.ListAll(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]licenseTypeResponse, 0, len(types))
	for _, lt := range types {
		items = append(items, toLicenseTypeResponse(lt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type licenseRequest struct {
	LicenseNumber       string  `json:"license_number"`
	LocationID          uint    `json:"location_id"`
	LicenseTypeID       uint    `json:"license_type_id"`
	ResponsiblePersonID *uint   `json:"responsible_person_id"`
	Status              string  `json:"status"`
	IssuedAt            *string `json:"issued_at"`
	ExpiresAt           *string `json:"expires_at"`
	Notes               string  `json:"notes"`
}

type licenseResponse struct {
	ID                  uint    `json:"id"`
	LicenseNumber       string  `json:"license_number"`
	LocationID          uint    `json:"location_id"`
	LicenseTypeID       uint    `json:"license_type_id"`
	ResponsiblePersonID *uint   `json:"responsible_person_id"`
	Status              string  `json:"status"`
	IssuedAt            *string `json:"issued_at"`
	ExpiresAt           *string `json:"expires_at"`
	DaysLeft            *int    `json:"days_left"`
	Notes               string  `json:"notes"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

func toLicenseResponse(l domain.ClinicLicense) licenseResponse {
	resp := licenseResponse{
		ID:                  l.ID,
		LicenseNumber:       l.LicenseNumber,
		LocationID:          l.LocationID,
		LicenseTypeID:       l.LicenseTypeID,
		ResponsiblePersonID: l.ResponsiblePersonID,
		Status:              string(l.Status),
		IssuedAt:            formatDatePtr(l.IssuedAt),
		ExpiresAt:           formatDatePtr(l.ExpiresAt),
		Notes:               l.Notes,
		CreatedAt:           formatTime(l.CreatedAt),
		UpdatedAt:           formatTime(l.UpdatedAt),
	}
	if days, ok := l.DaysUntilExpiry(time.Now().UTC()); ok {
		resp.DaysLeft = &days
	}
	return resp
}

func (h *Handler) decodeLicense(w http.ResponseWriter, r *http.Request) (domain.ClinicLicense, bool) {
	body, ok := readBody(w, r, maxJSONBodySize)
	if !ok {
		return domain.ClinicLicense{}, false
	}
	if err := h.schemas.Validate("license", body); err != nil {
		handleDomainError(w, err)
		return domain.ClinicLicense{}, false
	}

	var req licenseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return domain.ClinicLicense{}, false
	}
	issued, err := parseDatePtr(req.IssuedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "issued_at must be a date")
		return domain.ClinicLicense{}, false
	}
	expires, err := parseDatePtr(req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expires_at must be a date")
		return domain.ClinicLicense{}, false
	}
	if req.Status == "" {
		req.Status = string(domain.LicenseActive)
	}

	return domain.ClinicLicense{
		LicenseNumber:       req.LicenseNumber,
		LocationID:          req.LocationID,
		LicenseTypeID:       req.LicenseTypeID,
		ResponsiblePersonID: req.ResponsiblePersonID,
		Status:              domain.LicenseStatus(req.Status),
		IssuedAt:            issued,
		ExpiresAt:           expires,
		Notes:               req.Notes,
	}, true
}

func (h *Handler) createLicense(w http.ResponseWriter, r *http.Request) {
	lic, ok := h.decodeLicense(w, r)
	if !ok {
		return
	}
	created, err := h.licenses.Create(r.Context(), lic, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLicenseResponse(created))
}

func (h *Handler) updateLicense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lic, ok := h.decodeLicense(w, r)
	if !ok {
		return
	}
	lic.ID = id

	updated, err := h.licenses.Update(r.Context(), lic, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLicenseResponse(updated))
}

func (h *Handler) getLicense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	lic, err := h.licenses.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLicenseResponse(lic))
}

func (h *Handler) deleteLicense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	deleted, err := h.licenses.Delete(r.Context(), id, metaFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listLicenses(w http.ResponseWriter, r *http.Request) {
	filter := domain.LicenseFilter{
		Page:          parsePage(r),
		Status:        domain.LicenseStatus(r.URL.Query().Get("status")),
		LocationID:    parseUintQuery(r, "location_id"),
		LicenseTypeID: parseUintQuery(r, "license_type_id"),
	}

	licenses, total, err := h.licenses.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]licenseResponse, 0, len(licenses))
	for _, lic := range licenses {
		items = append(items, toLicenseResponse(lic))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  filter.Page.Page,
		"limit": filter.Page.Limit,
	})
}

func (h *Handler) expiringLicenses(w http.ResponseWriter, r *http.Request) {
	within := 30
	if raw := r.URL.Query().Get("within"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "within must be an integer number of days")
			return
		}
		within = parsed
	}

	licenses, err := h.licenses.Expiring(r.Context(), within, time.Now().UTC())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]licenseResponse, 0, len(licenses))
	for _, lic := range licenses {
		items = append(items, toLicenseResponse(lic))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "within_days": within})
}
