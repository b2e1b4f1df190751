package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mymind1423/interflow-admin/internal/config"
	"github.com/mymind1423/interflow-admin/internal/notify"
	"github.com/mymind1423/interflow-admin/internal/platform"
	"github.com/mymind1423/interflow-admin/internal/poll"
	"github.com/mymind1423/interflow-admin/internal/session"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakePlatform is a stand-in upstream with just enough state to exercise the
// gateway end to end.
type fakePlatform struct {
	mu          sync.Mutex
	pending     []platform.Account
	searchCalls int
	rejectCode  int
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/profile/get", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer admin-token":
			respond(w, http.StatusOK, platform.Profile{ID: "u1", Email: "admin@internflow.test", DisplayName: "Ada", UserType: "ADMIN"})
		case "Bearer student-token":
			respond(w, http.StatusOK, platform.Profile{ID: "u2", Email: "student@internflow.test", DisplayName: "Sam", UserType: "STUDENT"})
		default:
			respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
	})

	mux.HandleFunc("GET /api/admin/interviews", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, []platform.Interview{
			{ID: "i1", CompanyID: "c1", CompanyName: "Acme", StudentName: "Sam", Title: "Backend intern", Status: platform.InterviewAccepted, DateTime: fixedNow.Add(-10 * time.Minute)},
			{ID: "i2", CompanyID: "c2", CompanyName: "Globex", StudentName: "Lea", Title: "Data intern", Status: platform.InterviewAccepted, DateTime: fixedNow.Add(time.Hour)},
			{ID: "i3", CompanyID: "c1", CompanyName: "Acme", StudentName: "Noa", Title: "Fullstack intern", Status: platform.InterviewCancelled, DateTime: fixedNow.Add(2 * time.Hour)},
			{ID: "i4", CompanyID: "c2", CompanyName: "Globex", StudentName: "Kim", Title: "Cloud intern", Status: platform.InterviewAccepted, DateTime: fixedNow.Add(26 * time.Hour)},
		})
	})

	mux.HandleFunc("GET /api/admin/companies/pending", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		respond(w, http.StatusOK, f.pending)
	})
	mux.HandleFunc("POST /api/admin/companies/approve", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, company := range f.pending {
			if company.ID == req.ID {
				f.pending = append(f.pending[:i], f.pending[i+1:]...)
				respond(w, http.StatusOK, platform.Ack{Success: true})
				return
			}
		}
		respond(w, http.StatusNotFound, map[string]string{"error": "company not found"})
	})
	mux.HandleFunc("POST /api/admin/companies/reject", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		code := f.rejectCode
		f.mu.Unlock()
		if code != 0 {
			respond(w, code, map[string]string{"error": "already processed"})
			return
		}
		respond(w, http.StatusOK, platform.Ack{Success: true})
	})

	mux.HandleFunc("GET /api/admin/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.searchCalls++
		f.mu.Unlock()
		respond(w, http.StatusOK, platform.SearchResults{
			Students: []platform.Account{{ID: "u2", Name: "Sam"}},
		})
	})

	mux.HandleFunc("GET /api/notifications", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, []platform.Notification{
			{ID: "n1", Message: "New company signup", IsRead: false, CreatedAt: fixedNow},
		})
	})
	mux.HandleFunc("PUT /api/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, platform.Ack{Success: true})
	})

	mux.HandleFunc("GET /api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, platform.Stats{TotalStudents: 40, TotalCompanies: 10})
	})
	mux.HandleFunc("POST /api/admin/settings/update", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, platform.Ack{Success: true})
	})

	return mux
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type testEnv struct {
	fake    *fakePlatform
	gateway *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := &fakePlatform{
		pending: []platform.Account{
			{ID: "c9", Name: "Initech", Status: platform.StatusPending},
		},
	}
	upstream := httptest.NewServer(fake.handler())
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := platform.FallbackSource{
		Primary:  platform.ContextToken{},
		Fallback: platform.StaticToken("service-token"),
	}
	api := platform.NewAPI(platform.NewClient(upstream.URL, tokens, upstream.Client(), nil))
	sessions := session.NewManager(api, session.NewMemoryStore(), 15*time.Minute)
	center := notify.NewCenter(api, time.Hour, logger, nil)
	livePoller := poll.New("live", time.Hour, api.GetInterviews, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	livePoller.Start(ctx)
	t.Cleanup(livePoller.Stop)
	center.Start(ctx)
	t.Cleanup(center.Stop)

	cfg := config.Config{
		SlotDuration:    30 * time.Minute,
		SearchMinLength: 2,
		Timezone:        "UTC",
	}
	srv := NewServer(cfg, logger, api, sessions, center, livePoller, nil)
	srv.now = func() time.Time { return fixedNow }

	gateway := httptest.NewServer(srv.Router())
	t.Cleanup(gateway.Close)

	return &testEnv{fake: fake, gateway: gateway}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, e.gateway.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestAuthGuard(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "missing_token" {
		t.Fatalf("unexpected error code %q", body["error"])
	}

	resp = env.do(t, http.MethodGet, "/api/admin/stats", "bogus-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d, want 401", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/stats", "student-token", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin: got %d, want 403", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/stats", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin: got %d, want 200", resp.StatusCode)
	}
}

func TestApproveCompanyFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/companies/pending", "admin-token", nil)
	pending := decodeBody[[]platform.Account](t, resp)
	if len(pending) != 1 || pending[0].ID != "c9" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	resp = env.do(t, http.MethodPost, "/api/admin/companies/approve", "admin-token", map[string]string{"id": "c9"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: got %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/companies/pending", "admin-token", nil)
	pending = decodeBody[[]platform.Account](t, resp)
	if len(pending) != 0 {
		t.Fatalf("company still pending after approval: %+v", pending)
	}

	// Missing id never reaches the platform.
	resp = env.do(t, http.MethodPost, "/api/admin/companies/approve", "admin-token", map[string]string{"id": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty id: got %d, want 400", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "missing_fields" {
		t.Fatalf("unexpected error code %q", body["error"])
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	env.fake.mu.Lock()
	env.fake.rejectCode = http.StatusConflict
	env.fake.mu.Unlock()

	resp := env.do(t, http.MethodPost, "/api/admin/companies/reject", "admin-token", map[string]string{"id": "c9"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("got %d, want upstream status 409", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "upstream_error" || body["message"] != "already processed" {
		t.Fatalf("unexpected error payload: %+v", body)
	}
}

func TestUpstreamUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := platform.NewAPI(platform.NewClient(deadURL, platform.ContextToken{}, nil, nil))
	sessions := session.NewManager(api, session.NewMemoryStore(), time.Minute)
	center := notify.NewCenter(api, time.Hour, logger, nil)
	livePoller := poll.New("live", time.Hour, api.GetInterviews, logger)
	srv := NewServer(config.Config{Timezone: "UTC"}, logger, api, sessions, center, livePoller, nil)
	gateway := httptest.NewServer(srv.Router())
	defer gateway.Close()

	req, _ := http.NewRequest(http.MethodGet, gateway.URL+"/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "upstream_unreachable" {
		t.Fatalf("unexpected error code %q", body["error"])
	}
}

func TestLiveView(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/live", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d, want 200", resp.StatusCode)
	}
	view := decodeBody[liveResponse](t, resp)
	// i1 started 10m ago inside a 30m slot, i2 and i4 are upcoming, i3 is
	// cancelled and therefore completed regardless of its future start.
	if view.Stats.Active != 1 || view.Stats.Queue != 2 || view.Stats.Completed != 1 {
		t.Fatalf("unexpected counts: %+v", view.Stats)
	}
	if view.LastUpdated.IsZero() {
		t.Fatal("lastUpdated not set")
	}

	resp = env.do(t, http.MethodGet, "/api/admin/live?companyId=c1", "admin-token", nil)
	view = decodeBody[liveResponse](t, resp)
	if len(view.Interviews) != 2 {
		t.Fatalf("companyId filter: got %d interviews, want 2", len(view.Interviews))
	}

	resp = env.do(t, http.MethodPost, "/api/admin/live/refresh", "admin-token", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("refresh: got %d, want 202", resp.StatusCode)
	}
}

func TestPlanningFiltersAndGrouping(t *testing.T) {
	env := newTestEnv(t)

	type planningBody struct {
		Groups []struct {
			Key   string               `json:"key"`
			Items []platform.Interview `json:"items"`
		} `json:"groups"`
		Total int `json:"total"`
	}

	resp := env.do(t, http.MethodGet, "/api/admin/planning?groupBy=company", "admin-token", nil)
	body := decodeBody[planningBody](t, resp)
	if body.Total != 4 || len(body.Groups) != 2 {
		t.Fatalf("got total=%d groups=%d, want 4 and 2", body.Total, len(body.Groups))
	}
	// Interviews are sorted by start time, so Acme (i1) comes first.
	if body.Groups[0].Key != "Acme" || body.Groups[1].Key != "Globex" {
		t.Fatalf("unexpected group order: %q, %q", body.Groups[0].Key, body.Groups[1].Key)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning?tab=today", "admin-token", nil)
	body = decodeBody[planningBody](t, resp)
	if body.Total != 3 {
		t.Fatalf("tab=today: got %d, want 3", body.Total)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning?tab=upcoming", "admin-token", nil)
	body = decodeBody[planningBody](t, resp)
	if body.Total != 1 {
		t.Fatalf("tab=upcoming: got %d, want 1", body.Total)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning?q=data", "admin-token", nil)
	body = decodeBody[planningBody](t, resp)
	if body.Total != 1 || body.Groups[0].Items[0].ID != "i2" {
		t.Fatalf("q=data: unexpected result %+v", body)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning?tab=nonsense", "admin-token", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid tab: got %d, want 400", resp.StatusCode)
	}
}

func TestPlanningExport(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/planning/export?format=xlsx", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("xlsx: got %d, want 200", resp.StatusCode)
	}
	disposition := resp.Header.Get("Content-Disposition")
	if !strings.Contains(disposition, "PlanningInternFlow_2026-03-10.xlsx") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("response is not a zip container")
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning/export?format=pdf", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pdf: got %d, want 200", resp.StatusCode)
	}
	data, _ = io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("response is not a pdf")
	}

	resp = env.do(t, http.MethodGet, "/api/admin/planning/export?format=csv", "admin-token", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown format: got %d, want 400", resp.StatusCode)
	}
}

func TestSearchMinLength(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/search?q=a", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d, want 200", resp.StatusCode)
	}
	results := decodeBody[platform.SearchResults](t, resp)
	if len(results.Students) != 0 {
		t.Fatalf("short query returned results: %+v", results)
	}
	env.fake.mu.Lock()
	calls := env.fake.searchCalls
	env.fake.mu.Unlock()
	if calls != 0 {
		t.Fatalf("short query reached the platform %d times", calls)
	}

	resp = env.do(t, http.MethodGet, "/api/admin/search?q=sa", "admin-token", nil)
	results = decodeBody[platform.SearchResults](t, resp)
	if len(results.Students) != 1 {
		t.Fatalf("expected one student hit, got %+v", results)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/notifications", "admin-token", nil)
	type notifBody struct {
		Notifications []platform.Notification `json:"notifications"`
		UnreadCount   int                     `json:"unreadCount"`
	}
	body := decodeBody[notifBody](t, resp)
	if len(body.Notifications) != 1 || body.UnreadCount != 1 {
		t.Fatalf("unexpected notifications payload: %+v", body)
	}

	resp = env.do(t, http.MethodPut, "/api/notifications/n1/read", "admin-token", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark read: got %d, want 200", resp.StatusCode)
	}
	marked := decodeBody[map[string]int](t, resp)
	if marked["unreadCount"] != 0 {
		t.Fatalf("unreadCount = %d after mark read, want 0", marked["unreadCount"])
	}
}

func TestSettingUpdateValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/settings/update", "admin-token", map[string]string{"key": "maintenance"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing value: got %d, want 400", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/admin/settings/update", "admin-token", map[string]string{"key": "maintenance", "value": "off"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d, want 200", resp.StatusCode)
	}
}
