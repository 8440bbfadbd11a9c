package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/juniperhall/taskpoints/internal/dates"
	"github.com/juniperhall/taskpoints/internal/model"
	"github.com/juniperhall/taskpoints/internal/schedule"
	"github.com/juniperhall/taskpoints/internal/store"
)

var (
	seedYear  int
	seedMonth int
	seedRate  float64
)

var seedMonthCmd = &cobra.Command{
	Use:   "seed-month [tenant]",
	Short: "Fill a month with randomized completions for a tenant's recurring tasks",
	Long: `For every recurring task of the tenant, walk the task's active days in the
given month and mark each one completed with the given probability. Days that
already have a completion row are left alone, so re-running is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedMonth,
}

func init() {
	rootCmd.AddCommand(seedMonthCmd)
	seedMonthCmd.Flags().IntVar(&seedYear, "year", 0, "Year to seed (required)")
	seedMonthCmd.Flags().IntVar(&seedMonth, "month", 0, "Month to seed, 1-12 (required)")
	seedMonthCmd.Flags().Float64Var(&seedRate, "rate", 0.8, "Probability of completing each active day")
	seedMonthCmd.MarkFlagRequired("year")
	seedMonthCmd.MarkFlagRequired("month")
}

func runSeedMonth(cmd *cobra.Command, args []string) error {
	if seedMonth < 1 || seedMonth > 12 {
		return fmt.Errorf("month must be 1-12, got %d", seedMonth)
	}
	if seedRate < 0 || seedRate > 1 {
		return fmt.Errorf("rate must be between 0 and 1, got %g", seedRate)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	tenant, err := store.NewTenantStore(db).GetByName(args[0])
	if err != nil {
		return fmt.Errorf("look up tenant: %w", err)
	}
	if tenant == nil {
		return fmt.Errorf("tenant %q not found", args[0])
	}

	tasks, err := store.NewTaskStore(db).ListByTenant(tenant.ID, nil)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	completions := store.NewCompletionStore(db)
	start := dates.MonthStart(seedYear, seedMonth)
	end := dates.MonthEnd(seedYear, seedMonth)

	var seeded int
	for _, task := range tasks {
		if !task.IsRecurring {
			continue
		}
		active, err := schedule.ParseActiveDays(task.ActiveDays)
		if err != nil {
			return fmt.Errorf("task %d has invalid active days %q: %w", task.ID, task.ActiveDays, err)
		}

		for _, day := range dates.DaysInRange(start, end) {
			if !active.Contains(day.DayOfWeek()) {
				continue
			}
			if rand.Float64() >= seedRate {
				continue
			}
			existing, err := completions.CountForCell(task.ID, day)
			if err != nil {
				return fmt.Errorf("check completion: %w", err)
			}
			if existing > 0 {
				continue
			}
			if _, err := completions.Toggle(task.ID, day, model.StatusCompleted); err != nil {
				return fmt.Errorf("seed completion for task %d on %s: %w", task.ID, day, err)
			}
			seeded++
		}
	}

	fmt.Printf("Seeded %d completions for tenant %q in %04d-%02d\n", seeded, tenant.Name, seedYear, seedMonth)
	return nil
}
