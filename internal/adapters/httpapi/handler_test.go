package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage"
	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/usecase"
	"github.com/nmadhukar/workforcenexus/migrations"
)

const testRotationGrace = 30 * time.Minute

type testServer struct {
	handler http.Handler
	auth    *usecase.AuthService
	token   string
}

// newTestServer wires the full stack against a sqlite temp database and
// mints an admin token for the requests.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	db, err := gormdb.Open(gormdb.Config{
		Driver: gormdb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.sqlite"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlDB, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("write sql db: %v", err)
	}
	if err := migrations.Up(ctx, sqlDB, db.GooseDialect()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	employees := storage.NewEmployeeRepository(db)
	locations := storage.NewLocationRepository(db)
	types := storage.NewLicenseTypeRepository(db)
	licenses := storage.NewLicenseRepository(db)
	persons := storage.NewResponsiblePersonRepository(db)
	documents := storage.NewDocumentRepository(db)
	keys := storage.NewAPIKeyRepository(db)
	audits := storage.NewAuditRepository(db)
	outbox := storage.NewOutboxRepository(db)

	auth := usecase.NewAuthService(keys, outbox, usecase.NewHourlyLimiter(), "test")
	handler := NewHandler(Services{
		Employees:  usecase.NewEmployeeService(employees, locations),
		Locations:  usecase.NewLocationService(locations, employees),
		Types:      usecase.NewLicenseTypeService(types, licenses),
		Licenses:   usecase.NewLicenseService(licenses, types, persons, locations),
		Persons:    usecase.NewResponsiblePersonService(persons, licenses),
		Documents:  usecase.NewDocumentService(documents, licenses, locations),
		Compliance: usecase.NewComplianceService(licenses, documents, locations, types),
		Auth:       auth,
		Audit:      usecase.NewAuditService(audits),
		Schemas:    usecase.NewSchemaRegistry(),

		RotationGrace: testRotationGrace,
	})

	_, token, err := auth.Mint(ctx, usecase.MintKeyInput{
		Name:        "test-admin",
		Owner:       "tests",
		Permissions: []string{domain.PermissionAdmin},
	}, domain.MutationMeta{Actor: "bootstrap"})
	if err != nil {
		t.Fatalf("mint admin key: %v", err)
	}

	return &testServer{handler: handler.Router(), auth: auth, token: token}
}

func (s *testServer) do(t *testing.T, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", s.token)
	for _, fn := range mutate {
		fn(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestHealthzIsPublic(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/healthz", "", func(r *http.Request) {
		r.Header.Del("X-API-Key")
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteWithoutKey(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", func(r *http.Request) {
		r.Header.Del("X-API-Key")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRouteWithBogusKey(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", func(r *http.Request) {
		r.Header.Set("X-API-Key", "wfn_test_ffffffffffffffffffffffffffffffffffffffff")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBearerTokenAccepted(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", func(r *http.Request) {
		token := r.Header.Get("X-API-Key")
		r.Header.Del("X-API-Key")
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" || rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Fatal("rate limit headers missing")
	}
}

func TestEmployeeCreateListFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/employees", `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"email": "ada@example.org",
		"role": "physician",
		"npi_number": "1234567890",
		"hired_at": "2024-06-01"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	if created["email"] != "ada@example.org" || created["status"] != "active" {
		t.Fatalf("created payload: %v", created)
	}
	id := created["id"].(float64)
	if id == 0 {
		t.Fatal("created employee has no id")
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/employees", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	listing := decodeBody(t, rec)
	if listing["total"].(float64) != 1 {
		t.Fatalf("total = %v, want 1", listing["total"])
	}
	items := listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/employees/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing employee: expected 404, got %d", rec.Code)
	}
}

func TestEmployeeCreateValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/employees", `{"first_name": "Ada"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["fields"] == nil {
		t.Fatalf("validation response should name fields: %v", payload)
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/employees", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", rec.Code)
	}
}

func TestEmployeeDuplicateEmailConflicts(t *testing.T) {
	srv := newTestServer(t)
	body := `{"first_name": "Ada", "last_name": "L", "email": "dup@example.org"}`

	if rec := srv.do(t, http.MethodPost, "/api/v1/employees", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/employees", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPermissionScoping(t *testing.T) {
	srv := newTestServer(t)

	_, readerToken, err := srv.auth.Mint(context.Background(), usecase.MintKeyInput{
		Name:        "reader",
		Permissions: []string{"employees:read"},
	}, domain.MutationMeta{Actor: "test"})
	if err != nil {
		t.Fatalf("mint reader: %v", err)
	}
	asReader := func(r *http.Request) { r.Header.Set("X-API-Key", readerToken) }

	if rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", asReader); rec.Code != http.StatusOK {
		t.Fatalf("reader list: expected 200, got %d", rec.Code)
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/employees", `{"first_name":"A","last_name":"B","email":"a@b.co"}`, asReader)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reader create: expected 403, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/api/v1/api-keys", "", asReader); rec.Code != http.StatusForbidden {
		t.Fatalf("reader admin route: expected 403, got %d", rec.Code)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	srv := newTestServer(t)

	_, token, err := srv.auth.Mint(context.Background(), usecase.MintKeyInput{
		Name:        "throttled",
		Permissions: []string{"employees:read"},
		HourlyLimit: 2,
	}, domain.MutationMeta{Actor: "test"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	asThrottled := func(r *http.Request) { r.Header.Set("X-API-Key", token) }

	for i := 0; i < 2; i++ {
		if rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", asThrottled); rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i+1, rec.Code)
		}
	}
	rec := srv.do(t, http.MethodGet, "/api/v1/employees", "", asThrottled)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 must carry Retry-After")
	}
}

func TestLocationTreeView(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/locations", `{"name": "Main Clinic", "kind": "clinic"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create root: %d: %s", rec.Code, rec.Body.String())
	}
	rootID := int(decodeBody(t, rec)["id"].(float64))

	rec = srv.do(t, http.MethodPost, "/api/v1/locations", `{"name": "Satellite A", "kind": "satellite", "parent_id": `+itoaTest(rootID)+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: %d: %s", rec.Code, rec.Body.String())
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/locations?view=tree", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tree: %d", rec.Code)
	}
	listing := decodeBody(t, rec)
	items := listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("got %d roots, want 1", len(items))
	}
	root := items[0].(map[string]any)
	children := root["children"].([]any)
	if len(children) != 1 {
		t.Fatalf("root children = %v", children)
	}

	// Deleting the root while the child exists conflicts.
	rec = srv.do(t, http.MethodDelete, "/api/v1/locations/"+itoaTest(rootID), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete parent: expected 409, got %d", rec.Code)
	}
}

func TestDocumentUploadAndDownload(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/locations", `{"name": "Main", "kind": "clinic"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create location: %d", rec.Code)
	}
	locID := int(decodeBody(t, rec)["id"].(float64))

	content := []byte("%PDF-1.4 inspection findings")
	body := `{
		"title": "Fire inspection",
		"kind": "inspection",
		"location_id": ` + itoaTest(locID) + `,
		"file_name": "fire.pdf",
		"content_type": "application/pdf",
		"content": "` + base64.StdEncoding.EncodeToString(content) + `"
	}`
	rec = srv.do(t, http.MethodPost, "/api/v1/documents", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d: %s", rec.Code, rec.Body.String())
	}
	doc := decodeBody(t, rec)
	docID := itoaTest(int(doc["id"].(float64)))
	if doc["sha256"] == "" || doc["byte_size"].(float64) != float64(len(content)) {
		t.Fatalf("document metadata: %v", doc)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/documents/"+docID+"/content", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download: %d", rec.Code)
	}
	if rec.Body.String() != string(content) {
		t.Fatalf("downloaded %d bytes, want %d", rec.Body.Len(), len(content))
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "fire.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestAuditTrailEndpoint(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(t, http.MethodPost, "/api/v1/employees", `{"first_name":"A","last_name":"B","email":"a@b.co"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seed employee: %d", rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/audit?entity=employee", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("audit: %d", rec.Code)
	}
	listing := decodeBody(t, rec)
	items := listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("audit items = %v", items)
	}
	entry := items[0].(map[string]any)
	if entry["action"] != "create" || entry["actor"] != "test-admin" {
		t.Fatalf("audit entry = %v", entry)
	}
}

func TestAPIKeyAdminFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/api-keys", `{
		"name": "ci",
		"owner": "platform",
		"permissions": ["employees:read"],
		"hourly_limit": 10
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create key: %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	token, _ := payload["token"].(string)
	if !strings.HasPrefix(token, "wfn_test_") {
		t.Fatalf("token = %q", token)
	}
	key := payload["key"].(map[string]any)
	if _, leaked := key["token_hash"]; leaked {
		t.Fatal("key response must not expose the token hash")
	}
	keyID := key["id"].(string)

	rec = srv.do(t, http.MethodPost, "/api/v1/api-keys/"+keyID+"/rotate", "")
	if rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
		t.Fatalf("rotate: %d: %s", rec.Code, rec.Body.String())
	}
	rotated := decodeBody(t, rec)
	if rotated["token"] == token {
		t.Fatal("rotation must mint a fresh token")
	}
	replacement := rotated["key"].(map[string]any)
	if lineage, _ := replacement["rotated_from"].(string); lineage != keyID {
		t.Fatalf("rotated_from = %v, want %s", replacement["rotated_from"], keyID)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/api-keys/"+keyID+"/rotations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("rotations: %d", rec.Code)
	}
	rotations := decodeBody(t, rec)["items"].([]any)
	if len(rotations) != 1 {
		t.Fatalf("rotations = %v", rotations)
	}
	graceEndsAt, err := time.Parse(time.RFC3339, rotations[0].(map[string]any)["grace_ends_at"].(string))
	if err != nil {
		t.Fatalf("parse grace_ends_at: %v", err)
	}
	until := time.Until(graceEndsAt)
	if until <= 0 || until > testRotationGrace {
		t.Fatalf("grace window = %s, want at most the configured %s", until, testRotationGrace)
	}

	rec = srv.do(t, http.MethodDelete, "/api/v1/api-keys/"+keyID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke: %d", rec.Code)
	}
	rec = srv.do(t, http.MethodGet, "/api/v1/employees", "", func(r *http.Request) {
		r.Header.Set("X-API-Key", token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", rec.Code)
	}
}

func TestComplianceDashboardAndExport(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/compliance/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", rec.Code)
	}
	dash := decodeBody(t, rec)
	if _, ok := dash["licenses_by_status"]; !ok {
		t.Fatalf("dashboard body = %v", dash)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/compliance/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Fatalf("export content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "license_number,") {
		t.Fatalf("export body = %q", rec.Body.String())
	}
}

func itoaTest(v int) string {
	return strconv.Itoa(v)
}
