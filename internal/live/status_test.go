package live

import (
	"testing"
	"time"

	"github.com/mymind1423/interflow-admin/internal/platform"
)

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func interviewAt(id string, at time.Time, status string) platform.Interview {
	return platform.Interview{ID: id, DateTime: at, Status: status}
}

func TestClassifyTimeWindows(t *testing.T) {
	slot := 30 * time.Minute
	cases := map[string]struct {
		at     time.Time
		status string
		expect Status
	}{
		"started a second ago is active": {now.Add(-time.Second), "ACCEPTED", StatusActive},
		"starting in an hour is queued":  {now.Add(time.Hour), "ACCEPTED", StatusQueue},
		"two hours old is completed":     {now.Add(-2 * time.Hour), "ACCEPTED", StatusCompleted},
		"exactly at start is active":     {now, "ACCEPTED", StatusActive},
		"exactly at window end is done":  {now.Add(-slot), "ACCEPTED", StatusCompleted},
		"cancelled future is completed":  {now.Add(time.Hour), "CANCELLED", StatusCompleted},
		"completed status wins":          {now.Add(-time.Second), "COMPLETED", StatusCompleted},
		"rejected status wins":           {now.Add(time.Hour), "REJECTED", StatusCompleted},
		"declined status wins":           {now, "DECLINED", StatusCompleted},
	}
	for name, tc := range cases {
		annotated, _ := Classify([]platform.Interview{interviewAt("i", tc.at, tc.status)}, now, slot)
		if annotated[0].LiveStatus != tc.expect {
			t.Fatalf("%s: expected %s, got %s", name, tc.expect, annotated[0].LiveStatus)
		}
	}
}

func TestClassifyUnknownSlotDuration(t *testing.T) {
	// Without a slot window any started interview is completed; nothing is
	// ever active.
	annotated, counts := Classify([]platform.Interview{
		interviewAt("past", now.Add(-time.Second), "ACCEPTED"),
		interviewAt("future", now.Add(time.Minute), "ACCEPTED"),
	}, now, 0)
	if annotated[0].LiveStatus != StatusCompleted {
		t.Fatalf("expected started interview completed without window, got %s", annotated[0].LiveStatus)
	}
	if annotated[1].LiveStatus != StatusQueue {
		t.Fatalf("expected future interview queued, got %s", annotated[1].LiveStatus)
	}
	if counts.Active != 0 {
		t.Fatalf("expected no active interviews without window, got %d", counts.Active)
	}
}

func TestClassifyCountsAndPurity(t *testing.T) {
	input := []platform.Interview{
		interviewAt("a", now.Add(-time.Minute), "ACCEPTED"),
		interviewAt("b", now.Add(-2*time.Minute), "ACCEPTED"),
		interviewAt("c", now.Add(time.Hour), "ACCEPTED"),
		interviewAt("d", now.Add(-3*time.Hour), "ACCEPTED"),
		interviewAt("e", now.Add(2*time.Hour), "CANCELLED"),
	}
	annotated, counts := Classify(input, now, 30*time.Minute)
	if counts.Active != 2 || counts.Queue != 1 || counts.Completed != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if len(annotated) != len(input) {
		t.Fatalf("expected %d annotated items, got %d", len(input), len(annotated))
	}
	for i, iv := range input {
		if iv.Status != annotated[i].Interview.Status || !iv.DateTime.Equal(annotated[i].DateTime) {
			t.Fatalf("input %d mutated", i)
		}
	}

	// Same inputs, same answer.
	again, counts2 := Classify(input, now, 30*time.Minute)
	if counts2 != counts {
		t.Fatalf("classification not deterministic: %+v vs %+v", counts, counts2)
	}
	for i := range annotated {
		if annotated[i].LiveStatus != again[i].LiveStatus {
			t.Fatalf("classification not deterministic at %d", i)
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	annotated, counts := Classify(nil, now, 30*time.Minute)
	if len(annotated) != 0 {
		t.Fatalf("expected empty result")
	}
	if counts != (Counts{}) {
		t.Fatalf("expected zero counts, got %+v", counts)
	}
}
