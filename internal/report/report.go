// Package report assembles monthly per-person reports from the completion
// ledger and the progress aggregator.
package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/progress"
	"github.com/juniperhall/taskpoints/internal/schedule"
	"github.com/juniperhall/taskpoints/internal/store"
)

// ErrInvalidRange is returned for implausible year/month arguments.
var ErrInvalidRange = errors.New("invalid report range")

// PersonInfo is the report's view of the person.
type PersonInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PointGoal int    `json:"point_goal"`
}

// Monthly is one person's report for a calendar month. For the current
// month the window ends at the caller's as-of date; past months run
// through their last calendar day.
type Monthly struct {
	Person          PersonInfo             `json:"person"`
	Year            int                    `json:"year"`
	Month           int                    `json:"month"`
	TotalPoints     int                    `json:"total_points"`
	TotalMoney      float64                `json:"total_money"`
	CompletionCount int                    `json:"completion_count"`
	TaskSummaries   []progress.TaskSummary `json:"task_summaries"`
	Progress        int                    `json:"progress"`
}

// Service orchestrates the stores and the aggregator for report requests.
type Service struct {
	people      *store.PersonStore
	tasks       *store.TaskStore
	completions *store.CompletionStore
}

func NewService(people *store.PersonStore, tasks *store.TaskStore, completions *store.CompletionStore) *Service {
	return &Service{people: people, tasks: tasks, completions: completions}
}

// Monthly builds the report for (personID, year, month) as seen by tenantID
// on asOf. It fails with store.ErrNotFound when the person does not exist,
// store.ErrAccessDenied when they belong to another tenant, and
// ErrInvalidRange for implausible year/month values.
func (s *Service) Monthly(tenantID, personID int64, year, month int, asOf dates.Date) (*Monthly, error) {
	if year < 1970 || year > 2100 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: year %d month %d", ErrInvalidRange, year, month)
	}

	person, err := s.people.GetByID(personID)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, fmt.Errorf("person %d: %w", personID, store.ErrNotFound)
	}
	if person.TenantID != tenantID {
		return nil, fmt.Errorf("person %d: %w", personID, store.ErrAccessDenied)
	}

	start := dates.MonthStart(year, month)
	end := dates.MonthEnd(year, month)
	if asOf.SameMonth(year, month) {
		// Evaluate the current month only through today; the remaining
		// days are not yet failures.
		end = asOf
	}

	tasks, err := s.tasks.ListByTenant(tenantID, &personID)
	if err != nil {
		return nil, err
	}

	r := &Monthly{
		Person:        PersonInfo{ID: person.ID, Name: person.Name},
		Year:          year,
		Month:         month,
		TaskSummaries: []progress.TaskSummary{},
	}
	if person.PointGoal != nil {
		r.Person.PointGoal = *person.PointGoal
	}

	for _, task := range tasks {
		active, err := schedule.ParseActiveDays(task.ActiveDays)
		if err != nil {
			return nil, fmt.Errorf("task %d active days: %w", task.ID, err)
		}
		completions, err := s.completions.ListForTaskInRange(task.ID, start, end)
		if err != nil {
			return nil, err
		}

		summary := progress.Summarize(task, active, completions, start, end)
		r.TaskSummaries = append(r.TaskSummaries, summary)
		r.TotalPoints += summary.TotalPoints
		r.TotalMoney += summary.TotalMoney
		r.CompletionCount += summary.CompletedCount
	}

	// Busiest tasks first; stable so equal counts keep display order.
	sort.SliceStable(r.TaskSummaries, func(i, j int) bool {
		return r.TaskSummaries[i].CompletedCount > r.TaskSummaries[j].CompletedCount
	})

	r.Progress = progress.GoalProgress(person.PointGoal, r.TotalPoints)

	return r, nil
}
