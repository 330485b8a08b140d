// Package metrics aggregates sessions into dashboard counters and chart buckets.
package metrics

import (
	"time"

	"github.com/balkashynov/zen/internal/models"
)

// Metrics are the summary counters shown on the dashboard
type Metrics struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// Bucket is one chart bar
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

const (
	ColorCompleted  = "#9b87f5"
	ColorPending    = "#D3E4FD"
	ColorInProgress = "#F59E0B"
)

// Compute counts sessions by status
func Compute(sessions []models.Session) Metrics {
	m := Metrics{Total: len(sessions)}
	for _, s := range sessions {
		switch s.Status {
		case models.StatusCompleted:
			m.Completed++
		case models.StatusPending:
			m.Pending++
		case models.StatusInProgress:
			m.InProgress++
		}
	}
	return m
}

// CompletionRate is the completed share in percent, 0 for no sessions
func (m Metrics) CompletionRate() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Completed) / float64(m.Total) * 100
}

// Chart returns the Completed, Pending and In Progress buckets in that order
func Chart(sessions []models.Session) []Bucket {
	m := Compute(sessions)
	return []Bucket{
		{Name: models.StatusCompleted.Label(), Value: m.Completed, Color: ColorCompleted},
		{Name: models.StatusPending.Label(), Value: m.Pending, Color: ColorPending},
		{Name: models.StatusInProgress.Label(), Value: m.InProgress, Color: ColorInProgress},
	}
}

// WeekStart returns midnight of the Monday of t's calendar week
func WeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6
	}
	start := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

// Week is meditated minutes per day, Monday first
type Week struct {
	Start   time.Time
	Minutes [7]int
}

// Total minutes across the week
func (w Week) Total() int {
	sum := 0
	for _, m := range w.Minutes {
		sum += m
	}
	return sum
}

// WeeklyMinutes sums elapsed time of sessions scheduled in the week containing now.
// Sessions with an unparsable date are skipped.
func WeeklyMinutes(sessions []models.Session, now time.Time) Week {
	week := Week{Start: WeekStart(now)}
	end := week.Start.AddDate(0, 0, 7)

	for _, s := range sessions {
		day, err := time.ParseInLocation("2006-01-02", s.Date, now.Location())
		if err != nil || day.Before(week.Start) || !day.Before(end) {
			continue
		}
		idx := int(day.Sub(week.Start).Hours() / 24)
		if idx < 0 || idx > 6 {
			continue
		}
		week.Minutes[idx] += s.Elapsed() / 60
	}
	return week
}
