package platform

import (
	"encoding/json"
	"time"
)

// Account statuses as exposed by the platform.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Application statuses.
const (
	ApplicationApplied   = "APPLIED"
	ApplicationReviewing = "REVIEWING"
	ApplicationAccepted  = "ACCEPTED"
	ApplicationRejected  = "REJECTED"
)

// Interview statuses. The platform owns the full set; these are the ones the
// console reasons about.
const (
	InterviewAccepted  = "ACCEPTED"
	InterviewCompleted = "COMPLETED"
	InterviewCancelled = "CANCELLED"
)

type Documents struct {
	CVURL      string `json:"cvUrl,omitempty"`
	DiplomaURL string `json:"diplomaUrl,omitempty"`
}

// Account is a student or company record. Students carry Domaine, Grade and
// Documents; companies carry Name, Domaine and Location.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Status      string    `json:"status"`
	Domaine     string    `json:"domaine,omitempty"`
	Grade       string    `json:"grade,omitempty"`
	Location    string    `json:"location,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	DateOfBirth string    `json:"dateOfBirth,omitempty"`
	Documents   Documents `json:"documents"`
}

type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName,omitempty"`
	Domaine     string `json:"domaine,omitempty"`
}

type JobApplication struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	CompanyID string    `json:"companyId"`
	JobTitle  string    `json:"jobTitle"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interview is a scheduled interview slot. DateTime is stored UTC by the
// platform. CompanyName, StudentName and StudentDateOfBirth are display
// fields the platform joins in for the console.
type Interview struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"studentId"`
	CompanyID          string    `json:"companyId"`
	Title              string    `json:"title"`
	DateTime           time.Time `json:"dateTime"`
	Status             string    `json:"status"`
	MeetLink           string    `json:"meetLink,omitempty"`
	Room               string    `json:"room,omitempty"`
	Score              *float64  `json:"score,omitempty"`
	Remarks            string    `json:"remarks,omitempty"`
	IsRetained         bool      `json:"isRetained,omitempty"`
	CompanyName        string    `json:"companyName,omitempty"`
	StudentName        string    `json:"studentName,omitempty"`
	StudentDateOfBirth string    `json:"studentDateOfBirth,omitempty"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLogEntry is append-only and server-owned. Details may be a JSON object
// or a bare string depending on the action; it is kept raw and decoded on
// demand.
type AuditLogEntry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	ActorName string          `json:"actorName,omitempty"`
	ActorType string          `json:"actorType,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DetailsMap decodes Details as an object. A bare string comes back under the
// "message" key; anything undecodable yields an empty map.
func (e AuditLogEntry) DetailsMap() map[string]any {
	if len(e.Details) == 0 {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(e.Details, &obj); err == nil {
		return obj
	}
	var s string
	if err := json.Unmarshal(e.Details, &s); err == nil && s != "" {
		return map[string]any{"message": s}
	}
	return map[string]any{}
}

type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	UserType    string `json:"userType"`
}

// Settings is the platform's flat key→value configuration blob.
type Settings map[string]string

type Stats struct {
	TotalStudents     int `json:"totalStudents"`
	TotalCompanies    int `json:"totalCompanies"`
	PendingCompanies  int `json:"pendingCompanies"`
	ActiveCompanies   int `json:"activeCompanies"`
	TotalApplications int `json:"totalApplications"`
	TotalInterviews   int `json:"totalInterviews"`
}

type Funnel struct {
	Total       int `json:"total"`
	Interviewed int `json:"interviewed"`
	Retained    int `json:"retained"`
}

type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type AnalyticsReport struct {
	Funnel             Funnel        `json:"funnel"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}

type SearchResults struct {
	Students  []Account `json:"students"`
	Companies []Account `json:"companies"`
	Jobs      []Job     `json:"jobs"`
}

// LiveManagerData is the platform's own live view, proxied verbatim. The
// gateway additionally derives its own snapshot from the interview list.
type LiveManagerData struct {
	Stats       LiveStats   `json:"stats"`
	Interviews  []Interview `json:"interviews"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

type LiveStats struct {
	Active    int `json:"active"`
	Queue     int `json:"queue"`
	Completed int `json:"completed"`
}

type Ack struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}
