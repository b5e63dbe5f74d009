package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/quickstack-pos/api/internal/auth"
	"github.com/quickstack-pos/api/internal/middleware"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// authedRouter mounts h behind the bearer token middleware.
func authedRouter(h routeRegistrar) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	h.RegisterRoutes(r)
	return r
}

type testUser struct {
	userID   uuid.UUID
	tenantID uuid.UUID
	role     string
}

func cashier() testUser {
	return testUser{userID: uuid.New(), tenantID: uuid.New(), role: "CASHIER"}
}

func manager() testUser {
	return testUser{userID: uuid.New(), tenantID: uuid.New(), role: "MANAGER"}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, u testUser) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testSecret, u.userID, u.tenantID, u.role, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rr.Body.String())
	}
	return resp
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	resp := decodeResponse(t, rr)
	if resp["code"] != want {
		t.Errorf("error code: got %v, want %s (error: %v)", resp["code"], want, resp["error"])
	}
}

func testNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		panic(err)
	}
	return n
}

func testText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
