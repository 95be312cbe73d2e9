package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teocci/csh-caffeine/pkg/client"
	"github.com/teocci/csh-caffeine/pkg/config"
	"github.com/teocci/csh-caffeine/pkg/core"
)

type statusData struct {
	status   *core.Status
	battery  *client.BatteryInfo
	schedule *client.ScheduleStatus
	config   *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	bat, err := apiClient.GetBatteryInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get battery info: %w", err)
	}

	sch, err := apiClient.GetSchedule()
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status:   st,
		battery:  bat,
		schedule: sch,
		config:   conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of caffeine",
		Long:    `Get caffeine state, countdown, battery info, and configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")
			st := data.status

			cmd.Println(bold("State:"))

			var state string
			switch st.State {
			case core.StateActive:
				state = color.GreenString("active")
			case core.StatePaused:
				state = color.YellowString("paused")
			default:
				state = color.RedString("inactive")
			}
			cmd.Printf("  Caffeine is %s\n", bold("%s", state))

			left := time.Duration(st.RemainingSeconds) * time.Second
			switch st.TimerPurpose {
			case core.PurposeActiveFor:
				cmd.Printf("  Automatically turns off in %s\n", bold("%s", core.FormatDuration(left)))
			case core.PurposeInactiveFor:
				cmd.Printf("  Automatically resumes in %s\n", bold("%s", core.FormatDuration(left)))
			}

			cmd.Println()

			if data.battery.Present {
				cmd.Println(bold("Battery status:"))
				cmd.Printf("  Current charge: %s\n", bold("%.0f%%", data.battery.Percent))
				cmd.Printf("  State: %s\n", bold("%s", data.battery.State))
				cmd.Println("    Keeping the PC awake on battery drains it faster.")
				cmd.Println()
			}

			if data.schedule.Expression != "" {
				cmd.Println(bold("Wake schedule:"))
				cmd.Printf("  Expression: %s\n", bold("%s", data.schedule.Expression))
				cmd.Printf("  Duration: %s\n", bold("%d minutes", data.schedule.DurationMinutes))
				if data.schedule.NextRun > 0 {
					cmd.Printf("  Next run: %s\n", bold("%s", formatUnix(data.schedule.NextRun)))
				}
				cmd.Println()
			}

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Keep display on: %s\n", bool2Text(conf.KeepDisplayOn()))
			cmd.Printf("  Show remaining time in tooltip: %s\n", bool2Text(conf.ShowRemainingTime()))
			cmd.Printf("  Run at startup: %s\n", bool2Text(conf.RunAtStartup()))
			cmd.Printf("  Notification mode: %s\n", bold("%s", conf.NotificationMode()))
			return nil
		},
	}
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).Format(time.DateTime)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
