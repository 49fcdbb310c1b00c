package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storm/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"folder_id":null}`, true, nil},
		{"value", `{"folder_id":"folder-1"}`, true, strPtr("folder-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				FolderID OptionalString `json:"folder_id"`
			}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatal(err)
			}
			if req.FolderID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", req.FolderID.Present, tt.wantPresent)
			}
			if (req.FolderID.Value == nil) != (tt.wantValue == nil) ||
				(tt.wantValue != nil && *req.FolderID.Value != *tt.wantValue) {
				t.Errorf("Value = %v, want %v", req.FolderID.Value, tt.wantValue)
			}
		})
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","nmae":"b"}`))
	var dest struct {
		Name string `json:"name"`
	}

	if err := ParseJSON(httptest.NewRecorder(), req, &dest); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, `file "x" not found`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var problem map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatal(err)
	}
	if problem["title"] != "Not Found" || problem["detail"] != `file "x" not found` {
		t.Errorf("unexpected problem body: %v", problem)
	}
}

func strPtr(s string) *string { return &s }

func TestClaimsContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
	if _, ok := GetClaims(r); ok {
		t.Fatal("GetClaims() ok on an unauthenticated request")
	}
	if got := GetUserID(r); got != "" {
		t.Errorf("GetUserID() = %q, want empty", got)
	}

	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"},
		Email:            "dev@storm.test",
	}
	r = WithClaims(r, claims)

	got, ok := GetClaims(r)
	if !ok || got.Email != "dev@storm.test" {
		t.Fatalf("GetClaims() = %+v, %v", got, ok)
	}
	if id := GetUserID(r); id != "user-7" {
		t.Errorf("GetUserID() = %q, want user-7", id)
	}
}
