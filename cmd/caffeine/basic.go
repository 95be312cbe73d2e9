package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teocci/csh-caffeine/pkg/core"
	"github.com/teocci/csh-caffeine/pkg/events"
	"github.com/teocci/csh-caffeine/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle",
		Short:   "Toggle keeping the PC awake",
		GroupID: gBasic,
		Long: `Toggle keeping the PC awake.

Active goes Inactive. Inactive or Paused goes Active, cancelling any running countdown.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			st, err := apiClient.Toggle()
			if err != nil {
				return fmt.Errorf("failed to toggle: %v", err)
			}

			logrus.Infof("caffeine is now %s", st.State)

			return nil
		},
	}
}

func NewOnCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "on [minutes]",
		Short:   "Keep the PC awake",
		GroupID: gBasic,
		Long: `Keep the PC awake.

Without an argument, the PC is kept awake until you turn it off. With a minute count, keep-awake automatically ends after that long. Starting a new countdown replaces any running one.`,
		Example: `  caffeine on      (keep awake indefinitely)
  caffeine on 30   (keep awake for 30 minutes)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				if _, err := apiClient.SetActive(true); err != nil {
					return fmt.Errorf("failed to activate: %v", err)
				}
				logrus.Info("keeping the PC awake indefinitely")
				return nil
			}

			minutes, err := parseIntArg(args, "minutes")
			if err != nil {
				return err
			}

			if _, err := apiClient.SetActiveFor(minutes); err != nil {
				return fmt.Errorf("failed to activate: %v", err)
			}

			logrus.Infof("keeping the PC awake for %d minutes", minutes)

			return nil
		},
	}
}

func NewOffCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "off",
		Short:   "Stop keeping the PC awake",
		GroupID: gBasic,
		Long: `Stop keeping the PC awake.

Any running countdown is cancelled and normal sleep behavior is restored.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := apiClient.SetActive(false); err != nil {
				return fmt.Errorf("failed to deactivate: %v", err)
			}

			logrus.Info("no longer keeping the PC awake")

			return nil
		},
	}
}

func NewPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "pause [minutes]",
		Short:   "Pause keep-awake, then resume automatically",
		GroupID: gBasic,
		Long: `Pause keep-awake for the given number of minutes, then resume automatically.

Only available while active.`,
		Example: `  caffeine pause 30   (let the PC sleep for 30 minutes)`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			minutes, err := parseIntArg(args, "minutes")
			if err != nil {
				return err
			}

			if _, err := apiClient.SetInactiveFor(minutes); err != nil {
				return fmt.Errorf("failed to pause: %v", err)
			}

			logrus.Infof("paused for %d minutes, will resume automatically", minutes)

			return nil
		},
	}
}

func NewRemainingCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:     "remaining",
		Short:   "Show the remaining countdown time",
		GroupID: gBasic,
		Long: `Show the remaining countdown time.

With --watch, keep printing the countdown as it ticks until it expires or you interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %v", err)
			}

			if st.TimerPurpose == core.PurposeNone {
				cmd.Println("No countdown is running.")
				return nil
			}

			printRemaining(cmd, st.TimerPurpose, st.RemainingSeconds)
			if !watch {
				return nil
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			for ev := range apiClient.SubscribeEvents(ctx) {
				switch ev.Name {
				case events.TimerTick:
					payload, err := events.DecodeAs[events.TimerTickEvent](ev)
					if err != nil {
						logrus.WithError(err).Error("failed to decode timer.tick event")
						continue
					}
					if payload.Purpose == string(core.PurposeNone) {
						cmd.Println("Countdown cancelled.")
						return nil
					}
					printRemaining(cmd, core.TimerPurpose(payload.Purpose), payload.RemainingSeconds)
				case events.TimerExpired:
					payload, err := events.DecodeAs[events.TimerExpiredEvent](ev)
					if err != nil {
						logrus.WithError(err).Error("failed to decode timer.expired event")
						continue
					}
					cmd.Println(payload.Message)
					return nil
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing the countdown as it ticks")

	return cmd
}

func printRemaining(cmd *cobra.Command, purpose core.TimerPurpose, remainingSeconds int) {
	what := "active"
	if purpose == core.PurposeInactiveFor {
		what = "paused"
	}
	cmd.Printf("%s, %02d:%02d:%02d remaining\n", what,
		remainingSeconds/3600, remainingSeconds%3600/60, remainingSeconds%60)
}
