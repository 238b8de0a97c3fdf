package entries

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/family-hub/internal/storage"
)

func TestCRUDOverHTTP(t *testing.T) {
	svc, inv, _ := newTestServices()
	mux := http.NewServeMux()
	svc.Register(mux)

	body, _ := json.Marshal(storage.Meal{Date: "2024-01-02", MealType: "dinner", RecipeName: "Soupe", PrepMinutes: 15, CookMinutes: 30, Portions: 3})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/meals", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created storage.Meal
	json.NewDecoder(rec.Body).Decode(&created)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meals?from=2024-01-01&to=2024-01-07", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET list: %d", rec.Code)
	}
	var list ListResponse[storage.Meal]
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Items) != 1 || list.Items[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	created.Portions = 4
	body, _ = json.Marshal(created)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/meals/"+created.ID.String(), bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/meals/"+created.ID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meals/"+created.ID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET after delete: expected 404, got %d", rec.Code)
	}

	if len(inv.dates) != 3 {
		t.Fatalf("expected create, update and delete to invalidate, got %v", inv.dates)
	}
}

func TestHandlerErrors(t *testing.T) {
	svc, _, _ := newTestServices()
	mux := http.NewServeMux()
	svc.Register(mux)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"missing params", http.MethodGet, "/v1/activities", "", http.StatusBadRequest},
		{"bad id", http.MethodGet, "/v1/projects/123", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/v1/routines", "{", http.StatusBadRequest},
		{"invalid item", http.MethodPost, "/v1/events", `{"title":"","date":"2024-01-01"}`, http.StatusBadRequest},
		{"unknown id", http.MethodDelete, "/v1/events/5f1c3c2e-9a55-4a6e-8d2a-1c4e0b7f9a10", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body)))
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}
