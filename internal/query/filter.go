// Package query is the shared filter/group engine behind every list screen:
// students, companies, applications, interviews. Everything here is pure —
// input slices are never mutated and every call builds its result fresh.
package query

import (
	"strings"
	"time"
)

// Predicate reports whether an item passes a filter.
type Predicate[T any] func(T) bool

// Apply returns the items matching every predicate, in input order.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll[T any](item T, preds []Predicate[T]) bool {
	for _, pred := range preds {
		if pred != nil && !pred(item) {
			return false
		}
	}
	return true
}

// Search matches when term is a case-insensitive substring of any of the
// named fields. An empty term matches everything, so callers can pass the
// raw search box value straight through.
func Search[T any](term string, fields ...func(T) string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(item T) bool {
		if needle == "" {
			return true
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				return true
			}
		}
		return false
	}
}

// Equals matches on an exact field value. An empty want matches everything
// (an unset dropdown filter).
func Equals[T any](want string, field func(T) string) Predicate[T] {
	return func(item T) bool {
		return want == "" || field(item) == want
	}
}

// OnDay matches items whose timestamp falls on the given calendar day, both
// sides normalized to loc.
func OnDay[T any](day time.Time, loc *time.Location, field func(T) time.Time) Predicate[T] {
	if loc == nil {
		loc = time.UTC
	}
	wantY, wantM, wantD := day.In(loc).Date()
	return func(item T) bool {
		y, m, d := field(item).In(loc).Date()
		return y == wantY && m == wantM && d == wantD
	}
}

// Between matches items whose timestamp is in [from, to). A zero bound is
// open on that side.
func Between[T any](from, to time.Time, field func(T) time.Time) Predicate[T] {
	return func(item T) bool {
		at := field(item)
		if !from.IsZero() && at.Before(from) {
			return false
		}
		if !to.IsZero() && !at.Before(to) {
			return false
		}
		return true
	}
}
