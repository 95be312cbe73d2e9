package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewScheduleCommand() *cobra.Command {
	var durationMinutes int

	cmd := &cobra.Command{
		Use:     "schedule [cron-expression]",
		Aliases: []string{"sch", "sched"},
		Short:   "Manage the automatic wake schedule",
		GroupID: gAdvanced,
		Long: `Manage the automatic wake schedule.

A wake schedule activates keep-awake at fixed times for a fixed duration, as if you had picked it from the tray. The schedule command can be used in multiple ways:
  caffeine schedule 'minute hour day month weekday'  Set schedule with cron expression
  caffeine schedule disable                          Disable the schedule
  caffeine schedule skip                             Skip next run
  caffeine schedule show                             Show current schedule`,
		Example: `  caffeine schedule '0 9 * * 1-5' (At 09:00 on weekdays)
  caffeine schedule --duration 120 '0 9 * * 1-5' (same, staying awake for 2 hours)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no arguments, show the current schedule
			if len(args) == 0 {
				return runScheduleShow(cmd)
			}
			return runScheduleSet(args[0], durationMinutes)
		},
	}

	cmd.Flags().IntVar(&durationMinutes, "duration", 60, "how long each scheduled wake lasts, in minutes")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "disable",
			Short: "Disable the wake schedule",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.SetSchedule("", 0); err != nil {
					return fmt.Errorf("failed to disable schedule: %v", err)
				}
				logrus.Info("wake schedule disabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "skip",
			Short: "Skip the next scheduled wake",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := apiClient.SkipSchedule(); err != nil {
					return fmt.Errorf("failed to skip next run: %v", err)
				}
				logrus.Info("next scheduled wake skipped")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the current wake schedule",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runScheduleShow(cmd)
			},
		},
	)

	return cmd
}

func runScheduleShow(cmd *cobra.Command) error {
	st, err := apiClient.GetSchedule()
	if err != nil {
		return fmt.Errorf("failed to get schedule: %v", err)
	}

	if st.Expression == "" {
		cmd.Println("No wake schedule is set.")
		return nil
	}

	cmd.Printf("Expression: %s\n", st.Expression)
	cmd.Printf("Duration:   %d minutes\n", st.DurationMinutes)
	if st.NextRun > 0 {
		cmd.Printf("Next run:   %s\n", formatUnix(st.NextRun))
	}
	return nil
}

func runScheduleSet(expression string, durationMinutes int) error {
	if _, err := apiClient.SetSchedule(expression, durationMinutes); err != nil {
		return fmt.Errorf("failed to set schedule: %v", err)
	}
	logrus.Infof("wake schedule set to %q for %d minutes", expression, durationMinutes)
	return nil
}
