// Package audit renders platform audit-log entries as one-line summaries for
// the activity feed. Entries are read-only; unknown actions fall back to a
// generic line rather than being dropped.
package audit

import (
	"fmt"

	"github.com/mymind1423/interflow-admin/internal/platform"
)

// Known action codes.
const (
	ActionJobApplication = "JOB_APPLICATION"
	ActionApproveCompany = "APPROVE_COMPANY"
	ActionRejectCompany  = "REJECT_COMPANY"
	ActionUpdateSetting  = "UPDATE_SETTING"
	ActionLogin          = "LOGIN"
	ActionDeleteUser     = "DELETE_USER"
)

// Entry is an audit log entry with its rendered summary attached.
type Entry struct {
	platform.AuditLogEntry
	Summary string `json:"summary"`
}

// Humanize renders a single entry.
func Humanize(entry platform.AuditLogEntry) Entry {
	return Entry{AuditLogEntry: entry, Summary: summarize(entry)}
}

// HumanizeAll renders a list, preserving order.
func HumanizeAll(entries []platform.AuditLogEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[i] = Humanize(entry)
	}
	return out
}

func summarize(entry platform.AuditLogEntry) string {
	actor := entry.ActorName
	if actor == "" {
		actor = "System"
	}
	details := entry.DetailsMap()

	switch entry.Action {
	case ActionJobApplication:
		if title, ok := details["jobTitle"].(string); ok && title != "" {
			return fmt.Sprintf("%s submitted an application for %q", actor, title)
		}
		return fmt.Sprintf("%s submitted an application", actor)
	case ActionApproveCompany:
		return fmt.Sprintf("%s approved the company %s", actor, detailString(details, "companyName"))
	case ActionRejectCompany:
		return fmt.Sprintf("%s rejected the company %s", actor, detailString(details, "companyName"))
	case ActionUpdateSetting:
		return fmt.Sprintf("%s changed the system configuration", actor)
	case ActionLogin:
		return fmt.Sprintf("%s signed in to the platform", actor)
	case ActionDeleteUser:
		target := detailString(details, "email")
		if target == "" {
			target = detailString(details, "id")
		}
		return fmt.Sprintf("%s deleted the user %s", actor, target)
	default:
		return fmt.Sprintf("%s performed an action: %s", actor, entry.Action)
	}
}

func detailString(details map[string]any, key string) string {
	if value, ok := details[key].(string); ok {
		return value
	}
	return ""
}
