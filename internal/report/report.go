// Package report builds the dashboard and analytics view models.
//
// Retention is counted from interviews: an interview whose status is ACCEPTED
// or COMPLETED counts the student as retained. Funnel rates follow the same
// convention: conversion = retained/total students, interview success =
// retained/interviewed, qualification = interviewed/total.
package report

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/mymind1423/interflow-admin/internal/platform"
)

// Dashboard is the admin landing view: platform stats enriched with counts
// derived from the raw lists.
type Dashboard struct {
	platform.Stats
	TotalRetained             int `json:"totalRetained"`
	StudentsWithoutInterviews int `json:"studentsWithoutInterviews"`
}

// BuildDashboard loads stats, applications, interviews and students in
// parallel. The load is all-or-nothing: if any request fails the whole
// dashboard load fails once, with no partial result.
func BuildDashboard(ctx context.Context, api *platform.API) (Dashboard, error) {
	var (
		stats      platform.Stats
		interviews []platform.Interview
		students   []platform.Account
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = api.GetStats(gctx)
		return err
	})
	g.Go(func() error {
		// The application list itself feeds no derived number yet, but the
		// dashboard load stands or falls with it like the original screen.
		_, err := api.GetApplications(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		interviews, err = api.GetInterviews(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = api.GetStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	retained := 0
	interviewed := make(map[string]bool)
	for _, iv := range interviews {
		if iv.Status == platform.InterviewAccepted || iv.Status == platform.InterviewCompleted {
			retained++
		}
		if iv.StudentID != "" {
			interviewed[iv.StudentID] = true
		}
	}

	return Dashboard{
		Stats:                     stats,
		TotalRetained:             retained,
		StudentsWithoutInterviews: len(students) - len(interviewed),
	}, nil
}

// Rates are funnel percentages rounded to one decimal. A zero denominator
// yields a zero rate.
type Rates struct {
	Conversion       float64 `json:"conversionRate"`
	InterviewSuccess float64 `json:"interviewSuccessRate"`
	Qualification    float64 `json:"qualificationRate"`
}

func FunnelRates(f platform.Funnel) Rates {
	return Rates{
		Conversion:       percent(f.Retained, f.Total),
		InterviewSuccess: percent(f.Retained, f.Interviewed),
		Qualification:    percent(f.Interviewed, f.Total),
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// Analytics pairs the platform report with its derived rates.
type Analytics struct {
	platform.AnalyticsReport
	Rates Rates `json:"rates"`
}

func BuildAnalytics(ctx context.Context, api *platform.API) (Analytics, error) {
	reportData, err := api.GetAnalyticsReport(ctx)
	if err != nil {
		return Analytics{}, err
	}
	return Analytics{AnalyticsReport: reportData, Rates: FunnelRates(reportData.Funnel)}, nil
}
