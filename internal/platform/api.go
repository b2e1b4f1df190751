package platform

import (
	"context"
	"fmt"
	"net/url"
)

// API is the domain facade: one method per console operation, each a thin
// pass-through to the client with a fixed path and verb. Errors propagate
// unchanged; callers own user-facing reporting and any retry decision.
type API struct {
	c *Client
}

func NewAPI(c *Client) *API {
	return &API{c: c}
}

func (a *API) GetProfile(ctx context.Context) (Profile, error) {
	var out Profile
	err := a.c.get(ctx, "/api/profile/get", &out)
	return out, err
}

func (a *API) UpdateAdminProfile(ctx context.Context, displayName string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/profile/update", map[string]string{"displayName": displayName}, &out)
	return out, err
}

func (a *API) GetStats(ctx context.Context) (Stats, error) {
	var out Stats
	err := a.c.get(ctx, "/api/admin/stats", &out)
	return out, err
}

func (a *API) GetAnalyticsReport(ctx context.Context) (AnalyticsReport, error) {
	var out AnalyticsReport
	err := a.c.get(ctx, "/api/admin/analytics", &out)
	return out, err
}

func (a *API) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	err := a.c.get(ctx, "/api/admin/settings", &out)
	return out, err
}

func (a *API) UpdateSettings(ctx context.Context, settings Settings) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/settings", settings, &out)
	return out, err
}

func (a *API) UpdateSetting(ctx context.Context, key, value string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/settings/update", map[string]string{"key": key, "value": value}, &out)
	return out, err
}

func (a *API) GetStudents(ctx context.Context) ([]Account, error) {
	var out []Account
	err := a.c.get(ctx, "/api/admin/students", &out)
	return out, err
}

func (a *API) GetCompanies(ctx context.Context) ([]Account, error) {
	var out []Account
	err := a.c.get(ctx, "/api/admin/companies", &out)
	return out, err
}

func (a *API) GetPendingCompanies(ctx context.Context) ([]Account, error) {
	var out []Account
	err := a.c.get(ctx, "/api/admin/companies/pending", &out)
	return out, err
}

func (a *API) ApproveCompany(ctx context.Context, id string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/companies/approve", map[string]string{"id": id}, &out)
	return out, err
}

func (a *API) RejectCompany(ctx context.Context, id string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/companies/reject", map[string]string{"id": id}, &out)
	return out, err
}

func (a *API) DeleteUser(ctx context.Context, id string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, "/api/admin/users/delete", map[string]string{"id": id}, &out)
	return out, err
}

func (a *API) GetJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	err := a.c.get(ctx, "/api/admin/jobs", &out)
	return out, err
}

func (a *API) GetCompanyOffers(ctx context.Context, id string) ([]Job, error) {
	var out []Job
	err := a.c.get(ctx, "/api/admin/companies/"+url.PathEscape(id)+"/jobs", &out)
	return out, err
}

func (a *API) GetApplications(ctx context.Context) ([]JobApplication, error) {
	var out []JobApplication
	err := a.c.get(ctx, "/api/admin/applications", &out)
	return out, err
}

func (a *API) GetStudentApplications(ctx context.Context, id string) ([]JobApplication, error) {
	var out []JobApplication
	err := a.c.get(ctx, "/api/admin/students/"+url.PathEscape(id)+"/applications", &out)
	return out, err
}

func (a *API) GetInterviews(ctx context.Context) ([]Interview, error) {
	var out []Interview
	err := a.c.get(ctx, "/api/admin/interviews", &out)
	return out, err
}

func (a *API) GetStudentInterviews(ctx context.Context, id string) ([]Interview, error) {
	var out []Interview
	err := a.c.get(ctx, "/api/admin/students/"+url.PathEscape(id)+"/interviews", &out)
	return out, err
}

func (a *API) SendInterviewReminder(ctx context.Context, id string) (Ack, error) {
	var out Ack
	err := a.c.post(ctx, fmt.Sprintf("/api/admin/interviews/%s/remind", url.PathEscape(id)), nil, &out)
	return out, err
}

func (a *API) GetLiveManager(ctx context.Context, companyID, status string) (LiveManagerData, error) {
	params := url.Values{}
	if companyID != "" {
		params.Set("companyId", companyID)
	}
	if status != "" {
		params.Set("status", status)
	}
	path := "/api/admin/live-manager"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out LiveManagerData
	err := a.c.get(ctx, path, &out)
	return out, err
}

func (a *API) GetNotifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := a.c.get(ctx, "/api/notifications", &out)
	return out, err
}

func (a *API) MarkNotificationRead(ctx context.Context, id string) (Ack, error) {
	var out Ack
	err := a.c.put(ctx, "/api/notifications/"+url.PathEscape(id)+"/read", nil, &out)
	return out, err
}

func (a *API) MarkAllNotificationsRead(ctx context.Context) (Ack, error) {
	var out Ack
	err := a.c.put(ctx, "/api/notifications/read-all", nil, &out)
	return out, err
}

func (a *API) GetLogs(ctx context.Context) ([]AuditLogEntry, error) {
	var out []AuditLogEntry
	err := a.c.get(ctx, "/api/admin/logs", &out)
	return out, err
}

func (a *API) GlobalSearch(ctx context.Context, q string) (SearchResults, error) {
	var out SearchResults
	err := a.c.get(ctx, "/api/admin/search?q="+url.QueryEscape(q), &out)
	return out, err
}
