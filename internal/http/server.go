package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mymind1423/interflow-admin/internal/audit"
	"github.com/mymind1423/interflow-admin/internal/config"
	"github.com/mymind1423/interflow-admin/internal/export"
	"github.com/mymind1423/interflow-admin/internal/live"
	"github.com/mymind1423/interflow-admin/internal/metrics"
	"github.com/mymind1423/interflow-admin/internal/notify"
	"github.com/mymind1423/interflow-admin/internal/platform"
	"github.com/mymind1423/interflow-admin/internal/poll"
	"github.com/mymind1423/interflow-admin/internal/query"
	"github.com/mymind1423/interflow-admin/internal/report"
	"github.com/mymind1423/interflow-admin/internal/session"
)

type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	api        *platform.API
	sessions   *session.Manager
	center     *notify.Center
	livePoller *poll.Poller[[]platform.Interview]
	metrics    *metrics.Metrics
	validate   *validator.Validate
	loc        *time.Location
	now        func() time.Time
}

func NewServer(cfg config.Config, logger *slog.Logger, api *platform.API, sessions *session.Manager, center *notify.Center, livePoller *poll.Poller[[]platform.Interview], m *metrics.Metrics) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		api:        api,
		sessions:   sessions,
		center:     center,
		livePoller: livePoller,
		metrics:    m,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		loc:        cfg.Location(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/profile/get", s.handleGetProfile)
		r.Post("/admin/profile/update", s.handleUpdateProfile)
		r.Post("/admin/logout", s.handleLogout)

		r.Get("/admin/dashboard", s.handleDashboard)
		r.Get("/admin/stats", s.handleStats)
		r.Get("/admin/analytics", s.handleAnalytics)

		r.Get("/admin/students", s.handleListStudents)
		r.Get("/admin/students/export", s.handleExportStudents)
		r.Get("/admin/students/{id}/applications", s.handleStudentApplications)
		r.Get("/admin/students/{id}/interviews", s.handleStudentInterviews)

		r.Get("/admin/companies", s.handleListCompanies)
		r.Get("/admin/companies/pending", s.handlePendingCompanies)
		r.Post("/admin/companies/approve", s.handleApproveCompany)
		r.Post("/admin/companies/reject", s.handleRejectCompany)
		r.Get("/admin/companies/{id}/jobs", s.handleCompanyOffers)
		r.Post("/admin/users/delete", s.handleDeleteUser)

		r.Get("/admin/jobs", s.handleListJobs)
		r.Get("/admin/applications", s.handleListApplications)

		r.Get("/admin/interviews", s.handleListInterviews)
		r.Post("/admin/interviews/{id}/remind", s.handleRemindInterview)
		r.Get("/admin/planning", s.handlePlanning)
		r.Get("/admin/planning/export", s.handleExportPlanning)

		r.Get("/admin/live", s.handleLiveView)
		r.Post("/admin/live/refresh", s.handleLiveRefresh)
		r.Get("/admin/live-manager", s.handleLiveManagerProxy)

		r.Get("/notifications", s.handleListNotifications)
		r.Put("/notifications/{id}/read", s.handleMarkNotificationRead)
		r.Put("/notifications/read-all", s.handleMarkAllNotificationsRead)

		r.Get("/admin/logs", s.handleListLogs)
		r.Get("/admin/search", s.handleSearch)

		r.Get("/admin/settings", s.handleGetSettings)
		r.Post("/admin/settings", s.handleReplaceSettings)
		r.Post("/admin/settings/update", s.handleUpdateSetting)
	})

	return r
}

// Middleware

type principalKey struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the caller to a verified admin. The guard is always
// enforced: there is no unauthenticated path to any /api route. The caller's
// own token is forwarded on the context so every upstream call is made on
// their behalf.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		principal, err := s.sessions.Verify(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotAdmin):
				writeError(w, http.StatusForbidden, "admin_required")
			case errors.Is(err, session.ErrUnauthenticated):
				writeError(w, http.StatusUnauthorized, "invalid_token")
			default:
				s.logger.Error("session verify failed", "error", err)
				writeError(w, http.StatusBadGateway, "upstream_unreachable")
			}
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		ctx = platform.WithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) session.Principal {
	principal, _ := ctx.Value(principalKey{}).(session.Principal)
	return principal
}

// Profile & session

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principalFromContext(r.Context()))
}

type profileUpdateRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=80"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if !s.bind(w, r, &req) {
		return
	}
	if _, err := s.api.UpdateAdminProfile(r.Context(), req.DisplayName); err != nil {
		s.upstreamError(w, err)
		return
	}
	// Re-pull the profile so the cached principal reflects the change.
	token := bearerToken(r.Header.Get("Authorization"))
	principal, err := s.sessions.Refresh(r.Context(), token)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if err := s.sessions.Logout(r.Context(), token); err != nil {
		s.logger.Warn("logout cache purge failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Dashboard & analytics

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := report.BuildDashboard(r.Context(), s.api)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.GetStats(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := report.BuildAnalytics(r.Context(), s.api)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// Students

func (s *Server) loadStudents(r *http.Request) ([]platform.Account, error) {
	students, err := s.api.GetStudents(r.Context())
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return query.Apply(students,
		query.Search(q.Get("q"),
			func(a platform.Account) string { return a.Name },
			func(a platform.Account) string { return a.Email },
			func(a platform.Account) string { return a.Domaine },
		),
		query.Equals(q.Get("domaine"), func(a platform.Account) string { return a.Domaine }),
		query.Equals(q.Get("grade"), func(a platform.Account) string { return a.Grade }),
	), nil
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.loadStudents(r)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	grouping := groupAccounts(students, r.URL.Query().Get("groupBy"))
	writeJSON(w, http.StatusOK, map[string]any{"groups": grouping, "total": len(students)})
}

func groupAccounts(accounts []platform.Account, groupBy string) query.Grouping[platform.Account] {
	switch groupBy {
	case "domaine":
		return query.GroupBy(accounts, func(a platform.Account) string { return orUnknown(a.Domaine) })
	case "grade":
		return query.GroupBy(accounts, func(a platform.Account) string { return orUnknown(a.Grade) })
	case "status":
		return query.GroupBy(accounts, func(a platform.Account) string { return a.Status })
	default:
		return query.Ungrouped(accounts)
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}

var studentColumns = []export.Column{
	{Header: "Name", Key: "name", Width: 25},
	{Header: "Email", Key: "email", Width: 30},
	{Header: "Domain", Key: "domaine", Width: 20},
	{Header: "Grade", Key: "grade", Width: 15},
	{Header: "Status", Key: "status", Width: 15},
}

func (s *Server) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.loadStudents(r)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	rows := make([]export.Row, len(students))
	for i, student := range students {
		rows[i] = export.Row{
			"name":    student.Name,
			"email":   student.Email,
			"domaine": student.Domaine,
			"grade":   student.Grade,
			"status":  student.Status,
		}
	}
	s.serveExport(w, r, "Students InternFlow", "Students", studentColumns, rows, "")
}

func (s *Server) handleStudentApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.api.GetStudentApplications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleStudentInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := s.api.GetStudentInterviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

// Companies

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.api.GetCompanies(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	q := r.URL.Query()
	filtered := query.Apply(companies,
		query.Search(q.Get("q"),
			func(a platform.Account) string { return a.Name },
			func(a platform.Account) string { return a.Email },
		),
		query.Equals(q.Get("domaine"), func(a platform.Account) string { return a.Domaine }),
		query.Equals(q.Get("status"), func(a platform.Account) string { return a.Status }),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groupAccounts(filtered, q.Get("groupBy")),
		"total":  len(filtered),
	})
}

func (s *Server) handlePendingCompanies(w http.ResponseWriter, r *http.Request) {
	pending, err := s.api.GetPendingCompanies(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

func (s *Server) handleApproveCompany(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !s.bind(w, r, &req) {
		return
	}
	ack, err := s.api.ApproveCompany(r.Context(), req.ID)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleRejectCompany(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !s.bind(w, r, &req) {
		return
	}
	ack, err := s.api.RejectCompany(r.Context(), req.ID)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !s.bind(w, r, &req) {
		return
	}
	ack, err := s.api.DeleteUser(r.Context(), req.ID)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleCompanyOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.api.GetCompanyOffers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.api.GetJobs(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Applications

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.api.GetApplications(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	q := r.URL.Query()
	filtered := query.Apply(apps,
		query.Search(q.Get("q"), func(a platform.JobApplication) string { return a.JobTitle }),
		query.Equals(q.Get("status"), func(a platform.JobApplication) string { return a.Status }),
	)
	writeJSON(w, http.StatusOK, filtered)
}

// Interviews & planning

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := s.api.GetInterviews(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

func (s *Server) handleRemindInterview(w http.ResponseWriter, r *http.Request) {
	ack, err := s.api.SendInterviewReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// planningView loads interviews sorted by start time and applies the shared
// planning filters: free-text search, company, calendar day, and the
// today/upcoming/past tab.
func (s *Server) planningView(r *http.Request) ([]platform.Interview, error) {
	interviews, err := s.api.GetInterviews(r.Context())
	if err != nil {
		return nil, err
	}
	sorted := make([]platform.Interview, len(interviews))
	copy(sorted, interviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateTime.Before(sorted[j].DateTime)
	})

	q := r.URL.Query()
	preds := []query.Predicate[platform.Interview]{
		query.Search(q.Get("q"),
			func(iv platform.Interview) string { return iv.Title },
			func(iv platform.Interview) string { return iv.CompanyName },
			func(iv platform.Interview) string { return iv.StudentName },
		),
		query.Equals(q.Get("company"), func(iv platform.Interview) string { return iv.CompanyName }),
	}
	if day := q.Get("date"); day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", day, s.loc)
		if err != nil {
			return nil, errBadRequest
		}
		preds = append(preds, query.OnDay(parsed, s.loc, interviewTime))
	}
	if tab := q.Get("tab"); tab != "" {
		now := s.now().In(s.loc)
		startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
		endOfToday := startOfToday.AddDate(0, 0, 1)
		switch tab {
		case "today":
			preds = append(preds, query.Between(startOfToday, endOfToday, interviewTime))
		case "upcoming":
			preds = append(preds, query.Between(endOfToday, time.Time{}, interviewTime))
		case "past":
			preds = append(preds, query.Between(time.Time{}, startOfToday, interviewTime))
		default:
			return nil, errBadRequest
		}
	}
	return query.Apply(sorted, preds...), nil
}

func interviewTime(iv platform.Interview) time.Time { return iv.DateTime }

var errBadRequest = errors.New("bad request")

func (s *Server) handlePlanning(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.planningView(r)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		s.upstreamError(w, err)
		return
	}

	var grouping query.Grouping[platform.Interview]
	switch r.URL.Query().Get("groupBy") {
	case "company":
		grouping = query.GroupBy(filtered, func(iv platform.Interview) string { return orUnknown(iv.CompanyName) })
	case "date":
		grouping = query.GroupBy(filtered, func(iv platform.Interview) string {
			return iv.DateTime.In(s.loc).Format("Monday, 2 January 2006")
		})
	default:
		grouping = query.Ungrouped(filtered)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": grouping, "total": len(filtered)})
}

var planningColumns = []export.Column{
	{Header: "Date", Key: "date", Width: 14},
	{Header: "Time", Key: "time", Width: 10},
	{Header: "Company", Key: "company", Width: 22},
	{Header: "Student", Key: "student", Width: 22},
	{Header: "Title", Key: "title", Width: 26},
	{Header: "Status", Key: "status", Width: 14},
	{Header: "Location", Key: "location", Width: 20},
}

func (s *Server) handleExportPlanning(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.planningView(r)
	if err != nil {
		if errors.Is(err, errBadRequest) {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		s.upstreamError(w, err)
		return
	}
	rows := make([]export.Row, len(filtered))
	for i, iv := range filtered {
		location := iv.Room
		if location == "" {
			location = iv.MeetLink
		}
		at := iv.DateTime.In(s.loc)
		rows[i] = export.Row{
			"date":     at.Format("2006-01-02"),
			"time":     at.Format("15:04"),
			"company":  iv.CompanyName,
			"student":  iv.StudentName,
			"title":    iv.Title,
			"status":   iv.Status,
			"location": location,
		}
	}
	subtitle := r.URL.Query().Get("company")
	s.serveExport(w, r, "Planning InternFlow", "Planning", planningColumns, rows, subtitle)
}

// serveExport writes the requested file format. Assembly failures are
// reported like any other error, never crash the view.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, title, sheet string, columns []export.Column, rows []export.Row, subtitle string) {
	now := s.now()
	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		data, err := export.Excel(title, sheet, columns, rows)
		if err != nil {
			s.logger.Error("excel export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "export_failed")
			return
		}
		serveFile(w, export.Filename(title, "xlsx", now),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "pdf":
		data, err := export.PDF(title, subtitle, columns, rows, now)
		if err != nil {
			s.logger.Error("pdf export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "export_failed")
			return
		}
		serveFile(w, export.Filename(title, "pdf", now), "application/pdf", data)
	default:
		writeError(w, http.StatusBadRequest, "invalid_format")
	}
}

func serveFile(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Live manager

type liveResponse struct {
	Stats       live.Counts      `json:"stats"`
	Interviews  []live.Annotated `json:"interviews"`
	LastUpdated time.Time        `json:"lastUpdated"`
}

// handleLiveView serves the gateway's own derived snapshot: the polled
// interview list classified against now, with the same companyId/status
// filters the console sends.
func (s *Server) handleLiveView(w http.ResponseWriter, r *http.Request) {
	interviews, fetchedAt, ok := s.livePoller.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "snapshot_not_ready")
		return
	}
	q := r.URL.Query()
	filtered := query.Apply(interviews,
		query.Equals(q.Get("companyId"), func(iv platform.Interview) string { return iv.CompanyID }),
		query.Equals(q.Get("status"), func(iv platform.Interview) string { return iv.Status }),
	)
	annotated, counts := live.Classify(filtered, s.now(), s.cfg.SlotDuration)
	writeJSON(w, http.StatusOK, liveResponse{Stats: counts, Interviews: annotated, LastUpdated: fetchedAt})
}

func (s *Server) handleLiveRefresh(w http.ResponseWriter, r *http.Request) {
	refreshed := s.livePoller.RefreshNow(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]bool{"refreshed": refreshed})
}

func (s *Server) handleLiveManagerProxy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := s.api.GetLiveManager(r.Context(), q.Get("companyId"), q.Get("status"))
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Notifications

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.center.Notifications(),
		"unreadCount":   s.center.Unread(),
		"lastUpdated":   s.center.LastFetchedAt(),
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.center.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": s.center.Unread()})
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.center.MarkAllRead(r.Context()); err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": s.center.Unread()})
}

// Audit logs

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.api.GetLogs(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	q := r.URL.Query()
	filtered := query.Apply(logs,
		query.Search(q.Get("q"),
			func(e platform.AuditLogEntry) string { return e.Action },
			func(e platform.AuditLogEntry) string { return string(e.Details) },
			func(e platform.AuditLogEntry) string { return e.ActorName },
		),
	)
	if q.Get("humanize") == "1" {
		writeJSON(w, http.StatusOK, audit.HumanizeAll(filtered))
		return
	}
	writeJSON(w, http.StatusOK, filtered)
}

// Global search

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	// Below the minimum length nothing reaches the platform, mirroring the
	// console's debounce contract.
	if len([]rune(q)) < s.cfg.SearchMinLength {
		writeJSON(w, http.StatusOK, platform.SearchResults{
			Students:  []platform.Account{},
			Companies: []platform.Account{},
			Jobs:      []platform.Job{},
		})
		return
	}
	results, err := s.api.GlobalSearch(r.Context(), q)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Settings

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.api.GetSettings(r.Context())
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var settings platform.Settings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if len(settings) == 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	ack, err := s.api.UpdateSettings(r.Context(), settings)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

type settingUpdateRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req settingUpdateRequest
	if !s.bind(w, r, &req) {
		return
	}
	ack, err := s.api.UpdateSetting(r.Context(), req.Key, req.Value)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// Helpers

// bind decodes and validates a JSON request body, reporting 400 on failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSON(r, out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return false
	}
	return true
}

// upstreamError maps a platform failure onto the response: structured errors
// keep their upstream status and message, transport failures become a 502.
func (s *Server) upstreamError(w http.ResponseWriter, err error) {
	if apiErr, ok := platform.AsAPIError(err); ok {
		writeJSON(w, apiErr.Status, map[string]string{
			"error":   "upstream_error",
			"message": apiErr.Message,
		})
		return
	}
	s.logger.Error("upstream request failed", "error", err)
	writeError(w, http.StatusBadGateway, "upstream_unreachable")
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
