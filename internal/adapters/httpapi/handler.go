package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/usecase"
	"github.com/nmadhukar/workforcenexus/internal/log"
	"github.com/nmadhukar/workforcenexus/internal/metrics"
)

type ctxKey string

const (
	timeFormat            = "2006-01-02T15:04:05.999999999Z07:00"
	dateFormat            = "2006-01-02"
	apiKeyCtxKey   ctxKey = "api_key"
	maxJSONBodySize       = 1 << 20

	// Base64 inflates the raw document bytes by 4/3, plus room for the
	// JSON envelope around the content field.
	maxDocumentBodySize = domain.MaxDocumentBytes*4/3 + maxJSONBodySize
)

type Handler struct {
	employees  *usecase.EmployeeService
	locations  *usecase.LocationService
	types      *usecase.LicenseTypeService
	licenses   *usecase.LicenseService
	persons    *usecase.ResponsiblePersonService
	documents  *usecase.DocumentService
	compliance *usecase.ComplianceService
	auth       *usecase.AuthService
	audit      *usecase.AuditService
	schemas    *usecase.SchemaRegistry

	rotationGrace time.Duration
}

type Services struct {
	Employees  *usecase.EmployeeService
	Locations  *usecase.LocationService
	Types      *usecase.LicenseTypeService
	Licenses   *usecase.LicenseService
	Persons    *usecase.ResponsiblePersonService
	Documents  *usecase.DocumentService
	Compliance *usecase.ComplianceService
	Auth       *usecase.AuthService
	Audit      *usecase.AuditService
	Schemas    *usecase.SchemaRegistry

	// RotationGrace is how long a rotated-out key stays valid.
	// Zero means usecase.DefaultGraceWindow.
	RotationGrace time.Duration
}

func NewHandler(s Services) *Handler {
	if s.RotationGrace <= 0 {
		s.RotationGrace = usecase.DefaultGraceWindow
	}
	return &Handler{
		employees:  s.Employees,
		locations:  s.Locations,
		types:      s.Types,
		licenses:   s.Licenses,
		persons:    s.Persons,
		documents:  s.Documents,
		compliance: s.Compliance,
		auth:       s.Auth,
		audit:      s.Audit,
		schemas:    s.Schemas,

		rotationGrace: s.RotationGrace,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(countRequests)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(pr chi.Router) {
		pr.Use(h.requireAPIKey)

		pr.Get("/employees", h.requirePermission("employees:read", h.listEmployees))
		pr.Post("/employees", h.requirePermission("employees:write", h.createEmployee))
		pr.Get("/employees/{id}", h.requirePermission("employees:read", h.getEmployee))
		pr.Put("/employees/{id}", h.requirePermission("employees:write", h.updateEmployee))
		pr.Delete("/employees/{id}", h.requirePermission("employees:write", h.deleteEmployee))

		pr.Get("/locations", h.requirePermission("locations:read", h.listLocations))
		pr.Post("/locations", h.requirePermission("locations:write", h.createLocation))
		pr.Get("/locations/{id}", h.requirePermission("locations:read", h.getLocation))
		pr.Put("/locations/{id}", h.requirePermission("locations:write", h.updateLocation))
		pr.Delete("/locations/{id}", h.requirePermission("locations:write", h.deleteLocation))

		pr.Get("/license-types", h.requirePermission("licenses:read", h.listLicenseTypes))
		pr.Post("/license-types", h.requirePermission("licenses:write", h.createLicenseType))
		pr.Get("/license-types/{id}", h.requirePermission("licenses:read", h.getLicenseType))
		pr.Put("/license-types/{id}", h.requirePermission("licenses:write", h.updateLicenseType))
		pr.Delete("/license-types/{id}", h.requirePermission("licenses:write", h.deleteLicenseType))

		pr.Get("/licenses", h.requirePermission("licenses:read", h.listLicenses))
		pr.Get("/licenses/expiring", h.requirePermission("licenses:read", h.expiringLicenses))
		pr.Post("/licenses", h.requirePermission("licenses:write", h.createLicense))
		pr.Get("/licenses/{id}", h.requirePermission("licenses:read", h.getLicense))
		pr.Put("/licenses/{id}", h.requirePermission("licenses:write", h.updateLicense))
		pr.Delete("/licenses/{id}", h.requirePermission("licenses:write", h.deleteLicense))

		pr.Get("/responsible-persons", h.requirePermission("licenses:read", h.listPersons))
		pr.Post("/responsible-persons", h.requirePermission("licenses:write", h.createPerson))
		pr.Get("/responsible-persons/{id}", h.requirePermission("licenses:read", h.getPerson))
		pr.Put("/responsible-persons/{id}", h.requirePermission("licenses:write", h.updatePerson))
		pr.Delete("/responsible-persons/{id}", h.requirePermission("licenses:write", h.deletePerson))

		pr.Get("/documents", h.requirePermission("documents:read", h.listDocuments))
		pr.Post("/documents", h.requirePermission("documents:write", h.uploadDocument))
		pr.Get("/documents/{id}", h.requirePermission("documents:read", h.getDocument))
		pr.Get("/documents/{id}/content", h.requirePermission("documents:read", h.downloadDocument))
		pr.Delete("/documents/{id}", h.requirePermission("documents:write", h.deleteDocument))

		pr.Get("/compliance/dashboard", h.requirePermission("compliance:read", h.complianceDashboard))
		pr.Get("/compliance/export", h.requirePermission("compliance:read", h.complianceExport))

		pr.Get("/api-keys", h.requirePermission(domain.PermissionAdmin, h.listAPIKeys))
		pr.Post("/api-keys", h.requirePermission(domain.PermissionAdmin, h.createAPIKey))
		pr.Delete("/api-keys/{id}", h.requirePermission(domain.PermissionAdmin, h.revokeAPIKey))
		pr.Post("/api-keys/{id}/rotate", h.requirePermission(domain.PermissionAdmin, h.rotateAPIKey))
		pr.Get("/api-keys/{id}/rotations", h.requirePermission(domain.PermissionAdmin, h.listKeyRotations))

		pr.Get("/audit", h.requirePermission("audit:read", h.listAudit))
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if token == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}

		key, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				metrics.AuthFailuresTotal.Inc()
				writeError(w, http.StatusUnauthorized, "unauthorized")
			case errors.Is(err, domain.ErrRateLimited):
				metrics.RateLimitRejectionsTotal.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(secondsToNextHour(time.Now().UTC())))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			default:
				log.WithComponent("httpapi").Error().Err(err).Msg("authenticate request")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(key.HourlyLimit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(h.auth.RateRemaining(key)))

		ctx := context.WithValue(r.Context(), apiKeyCtxKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requirePermission(perm string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := keyFromContext(r.Context())
		if !key.HasPermission(perm) {
			writeError(w, http.StatusForbidden, "missing permission "+perm)
			return
		}
		next(w, r)
	}
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}

func keyFromContext(ctx context.Context) domain.APIKey {
	key, _ := ctx.Value(apiKeyCtxKey).(domain.APIKey)
	return key
}

// metaFromRequest builds the mutation metadata recorded with every write:
// the authenticated key's name as actor plus chi's request id.
func metaFromRequest(r *http.Request) domain.MutationMeta {
	key := keyFromContext(r.Context())
	return domain.MutationMeta{
		Actor:     key.Name,
		RequestID: middleware.GetReqID(r.Context()),
	}.Normalize()
}

// readBody drains up to limit bytes of the request body, mapping an
// oversized payload to 413. The bool result reports whether the caller
// may proceed.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "read request body")
		return nil, false
	}
	return data, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func parsePage(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.PageRequest{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(q.Get("search")),
	}.Normalize()
}

func parseUintQuery(r *http.Request, name string) *uint {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil
	}
	u := uint(v)
	return &u
}

func parseInt64Query(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func secondsToNextHour(now time.Time) int {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return int(next.Sub(now).Seconds()) + 1
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.WithComponent("httpapi").Error().Err(err).Msg("encode json response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.WithComponent("httpapi").Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	default:
		log.WithComponent("httpapi").Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateFormat)
	return &s
}

// parseDatePtr accepts either a bare date or a full RFC3339 timestamp.
func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateFormat, *s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
