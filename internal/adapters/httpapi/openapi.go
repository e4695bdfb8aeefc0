package httpapi

import "net/http"

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

func openapiSpec() map[string]any {
	crud := func(listSummary, createSummary, getSummary, updateSummary, deleteSummary string) (map[string]any, map[string]any) {
		collection := map[string]any{
			"get":  map[string]any{"summary": listSummary},
			"post": map[string]any{"summary": createSummary},
		}
		item := map[string]any{
			"get":    map[string]any{"summary": getSummary},
			"put":    map[string]any{"summary": updateSummary},
			"delete": map[string]any{"summary": deleteSummary},
		}
		return collection, item
	}

	employees, employee := crud("List employees", "Create employee", "Get employee", "Update employee", "Delete employee")
	locations, location := crud("List locations", "Create location", "Get location", "Update location", "Delete location")
	licenseTypes, licenseType := crud("List license types", "Create license type", "Get license type", "Update license type", "Delete license type")
	licenses, license := crud("List licenses", "Create license", "Get license", "Update license", "Delete license")
	persons, person := crud("List responsible persons", "Create responsible person", "Get responsible person", "Update responsible person", "Delete responsible person")

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "workforcenexus",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/api/v1/employees":            employees,
			"/api/v1/employees/{id}":       employee,
			"/api/v1/locations":            locations,
			"/api/v1/locations/{id}":       location,
			"/api/v1/license-types":        licenseTypes,
			"/api/v1/license-types/{id}":   licenseType,
			"/api/v1/licenses":             licenses,
			"/api/v1/licenses/{id}":        license,
			"/api/v1/licenses/expiring": map[string]any{
				"get": map[string]any{"summary": "List licenses expiring within the window"},
			},
			"/api/v1/responsible-persons":      persons,
			"/api/v1/responsible-persons/{id}": person,
			"/api/v1/documents": map[string]any{
				"get":  map[string]any{"summary": "List compliance documents"},
				"post": map[string]any{"summary": "Upload compliance document"},
			},
			"/api/v1/documents/{id}": map[string]any{
				"get":    map[string]any{"summary": "Get compliance document"},
				"delete": map[string]any{"summary": "Delete compliance document"},
			},
			"/api/v1/documents/{id}/content": map[string]any{
				"get": map[string]any{"summary": "Download document content"},
			},
			"/api/v1/compliance/dashboard": map[string]any{
				"get": map[string]any{"summary": "Compliance dashboard"},
			},
			"/api/v1/compliance/export": map[string]any{
				"get": map[string]any{"summary": "Export licenses as CSV"},
			},
			"/api/v1/api-keys": map[string]any{
				"get":  map[string]any{"summary": "List API keys"},
				"post": map[string]any{"summary": "Mint API key"},
			},
			"/api/v1/api-keys/{id}": map[string]any{
				"delete": map[string]any{"summary": "Revoke API key"},
			},
			"/api/v1/api-keys/{id}/rotate": map[string]any{
				"post": map[string]any{"summary": "Rotate API key"},
			},
			"/api/v1/api-keys/{id}/rotations": map[string]any{
				"get": map[string]any{"summary": "List key rotations"},
			},
			"/api/v1/audit": map[string]any{
				"get": map[string]any{"summary": "List audit entries"},
			},
		},
	}
}
