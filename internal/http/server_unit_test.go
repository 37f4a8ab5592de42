package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Johnson150/cls-sub000/internal/booking"
	"github.com/Johnson150/cls-sub000/internal/config"
)

// newUnitServer has no store. Only paths that reject input before touching
// the database are safe to hit.
func newUnitServer(t *testing.T, requireAuth bool) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
		RequireAuth:    requireAuth,
		Timezone:       "UTC",
	}
	server := NewServer(cfg, nil, nil, nil)
	server.now = func() time.Time { return time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC) }
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return app
}

func send(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer  abc ":   "abc",
		"Basic abc":      "",
		"Bearerabc":      "",
		"Bearer abc def": "abc def",
	}
	for header, expect := range cases {
		if got := bearerToken(header); got != expect {
			t.Fatalf("bearerToken(%q): expected %q, got %q", header, expect, got)
		}
	}
}

func TestFlexString(t *testing.T) {
	var req courseRequest
	if err := json.Unmarshal([]byte(`{"courseName":"Algebra","grade":10}`), &req); err != nil {
		t.Fatalf("decode numeric grade: %v", err)
	}
	if req.Grade == nil || string(*req.Grade) != "10" {
		t.Fatalf("expected grade 10, got %v", req.Grade)
	}
	if err := json.Unmarshal([]byte(`{"grade":"K"}`), &req); err != nil {
		t.Fatalf("decode string grade: %v", err)
	}
	if string(*req.Grade) != "K" {
		t.Fatalf("expected grade K, got %s", *req.Grade)
	}
	if err := json.Unmarshal([]byte(`{"grade":true}`), &req); err == nil {
		t.Fatalf("expected boolean grade to fail")
	}
}

func TestStatusForKind(t *testing.T) {
	if statusForKind(booking.KindInvalidInput) != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid input")
	}
	if statusForKind(booking.KindNotFound) != http.StatusNotFound {
		t.Fatalf("expected 404 for not found")
	}
	if statusForKind(booking.KindInternal) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for internal")
	}
}

func TestHealth(t *testing.T) {
	app := newUnitServer(t, false)
	resp, payload := send(t, http.MethodGet, app.URL+"/health", "")
	if resp.StatusCode != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("expected ok health, got %d %v", resp.StatusCode, payload)
	}
}

func TestRequestValidation(t *testing.T) {
	app := newUnitServer(t, false)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"class missing start", http.MethodPost, "/scheduledclass", `{"end":"2024-06-01T18:30"}`, "invalid_request"},
		{"class unknown field", http.MethodPost, "/scheduledclass", `{"start":"2024-06-01T16:30","end":"2024-06-01T18:30","tutorNames":["x"]}`, "invalid_request"},
		{"class bad student id", http.MethodPost, "/scheduledclass", `{"start":"2024-06-01T16:30","end":"2024-06-01T18:30","studentIds":["nope"]}`, "invalid_request"},
		{"class bad bookedOffBy", http.MethodPost, "/scheduledclass", `{"start":"2024-06-01T16:30","end":"2024-06-01T18:30","status":"BOOKED_OFF","bookedOffBy":"PARENT"}`, "invalid_booked_off_by"},
		{"class end before start", http.MethodPost, "/scheduledclass", `{"start":"2024-06-01T18:30","end":"2024-06-01T16:30"}`, "invalid_time_range"},
		{"student missing name", http.MethodPost, "/student", `{"contact":"555"}`, "missing_name"},
		{"course missing name", http.MethodPost, "/course", `{"grade":5}`, "missing_course_name"},
		{"link missing student", http.MethodPost, "/studentscheduledclass", `{"scheduledClassId":"11111111-1111-1111-1111-111111111111"}`, "invalid_request"},
	}
	for _, tc := range cases {
		resp, payload := send(t, tc.method, app.URL+tc.path, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
		if payload["error"] != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, payload["error"])
		}
	}
}

func TestInvalidPathIDs(t *testing.T) {
	app := newUnitServer(t, false)
	for _, path := range []string{"/student/abc", "/tutor/abc", "/course/abc", "/scheduledclass/abc", "/studentscheduledclass/abc", "/tutorscheduledclass/abc"} {
		resp, _ := send(t, http.MethodGet, app.URL+path, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	app := newUnitServer(t, true)
	resp, payload := send(t, http.MethodGet, app.URL+"/student", "")
	if resp.StatusCode != http.StatusUnauthorized || payload["error"] != "missing_token" {
		t.Fatalf("expected 401 missing_token, got %d %v", resp.StatusCode, payload)
	}

	req, _ := http.NewRequest(http.MethodGet, app.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.StatusCode)
	}
}

func TestCalendarSelectSlot(t *testing.T) {
	app := newUnitServer(t, false)

	resp, payload := send(t, http.MethodPost, app.URL+"/calendar/select", `{"view":"MONTH","slot":"2024-06-01T16:30"}`)
	if resp.StatusCode != http.StatusOK || payload["view"] != "WEEK" || payload["draft"] != nil {
		t.Fatalf("expected WEEK without draft, got %d %v", resp.StatusCode, payload)
	}

	resp, payload = send(t, http.MethodPost, app.URL+"/calendar/select", `{"view":"DAY","slot":"2024-06-01T16:30"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	draft, ok := payload["draft"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected draft, got %v", payload)
	}
	if draft["mode"] != "ADD" || draft["start"] != "2024-06-01T16:30:00Z" || draft["end"] != "2024-06-01T18:30:00Z" {
		t.Fatalf("unexpected draft %v", draft)
	}

	resp, payload = send(t, http.MethodPost, app.URL+"/calendar/select", `{"view":"DAY"}`)
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "missing_selection" {
		t.Fatalf("expected missing_selection, got %d %v", resp.StatusCode, payload)
	}
}

func TestCalendarRejectsBadParams(t *testing.T) {
	app := newUnitServer(t, false)
	for path, code := range map[string]string{
		"/calendar?view=YEAR":        "invalid_view",
		"/calendar?action=SKIP":      "invalid_action",
		"/calendar?date=tomorrow":    "invalid_date",
		"/calendar/hours?view=YEAR":  "invalid_view",
		"/calendar/hours?date=later": "invalid_date",
	} {
		resp, payload := send(t, http.MethodGet, app.URL+path, "")
		if resp.StatusCode != http.StatusBadRequest || payload["error"] != code {
			t.Fatalf("%s: expected %s, got %d %v", path, code, resp.StatusCode, payload)
		}
	}
}

func TestImportRequiresMultipart(t *testing.T) {
	app := newUnitServer(t, false)
	resp, payload := send(t, http.MethodPost, app.URL+"/student/import", `{}`)
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "invalid_upload" {
		t.Fatalf("expected invalid_upload, got %d %v", resp.StatusCode, payload)
	}
}
