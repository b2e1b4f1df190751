// Package live derives the transient active/queue/completed state of
// scheduled interviews from their timestamps. The result is never persisted
// and never written back onto the interview record; a re-fetch always
// supersedes it.
package live

import (
	"time"

	"github.com/mymind1423/interflow-admin/internal/platform"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusQueue     Status = "queue"
	StatusCompleted Status = "completed"
)

// Annotated wraps an interview with its derived status. The DTO itself stays
// untouched so stale derived data can never shadow a fresh fetch.
type Annotated struct {
	platform.Interview
	LiveStatus Status `json:"liveStatus"`
}

type Counts struct {
	Active    int `json:"active"`
	Queue     int `json:"queue"`
	Completed int `json:"completed"`
}

// terminal statuses always classify as completed regardless of timestamps.
var terminal = map[string]bool{
	"COMPLETED": true,
	"CANCELLED": true,
	"REJECTED":  true,
	"DECLINED":  true,
}

// Classify annotates every interview with its live status relative to now and
// tallies the buckets. With slotDuration > 0 an interview is active from its
// start time until start+slotDuration. With slotDuration == 0 the window is
// unknown and any started interview counts as completed; there is no active
// state in that mode.
func Classify(interviews []platform.Interview, now time.Time, slotDuration time.Duration) ([]Annotated, Counts) {
	annotated := make([]Annotated, 0, len(interviews))
	var counts Counts
	for _, iv := range interviews {
		status := classifyOne(iv, now, slotDuration)
		annotated = append(annotated, Annotated{Interview: iv, LiveStatus: status})
		switch status {
		case StatusActive:
			counts.Active++
		case StatusQueue:
			counts.Queue++
		case StatusCompleted:
			counts.Completed++
		}
	}
	return annotated, counts
}

func classifyOne(iv platform.Interview, now time.Time, slotDuration time.Duration) Status {
	if terminal[iv.Status] {
		return StatusCompleted
	}
	start := iv.DateTime
	if now.Before(start) {
		return StatusQueue
	}
	if slotDuration <= 0 {
		return StatusCompleted
	}
	if now.Before(start.Add(slotDuration)) {
		return StatusActive
	}
	return StatusCompleted
}
