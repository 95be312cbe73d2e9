package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teocci/csh-caffeine/pkg/config"
)

func NewDisplayCommand() *cobra.Command {
	return newEnableDisableCommand(
		"display",
		"keeping the display on",
		`Control whether the display is kept on while caffeine is active.

When disabled, the system still stays awake but the display may turn off on its own schedule. Takes effect immediately if currently active.`,
		gSettings,
		func() (string, error) { return apiClient.SetKeepDisplayOn(true) },
		func() (string, error) { return apiClient.SetKeepDisplayOn(false) },
	)
}

func NewShowRemainingTimeCommand() *cobra.Command {
	return newEnableDisableCommand(
		"show-remaining-time",
		"showing the countdown in the tray tooltip",
		`Control whether the tray tooltip includes the remaining countdown time.`,
		gSettings,
		func() (string, error) { return apiClient.SetShowRemainingTime(true) },
		func() (string, error) { return apiClient.SetShowRemainingTime(false) },
	)
}

func NewStartupCommand() *cobra.Command {
	return newEnableDisableCommand(
		"startup",
		"starting caffeine at login",
		`Control whether the caffeine tray starts automatically when you log in.

The daemon registers or removes the OS startup entry; the setting is only saved once the OS accepted the change.`,
		gSettings,
		func() (string, error) { return apiClient.SetRunAtStartup(true) },
		func() (string, error) { return apiClient.SetRunAtStartup(false) },
	)
}

func NewNotificationModeCommand() *cobra.Command {
	modes := []config.NotificationMode{
		config.NotificationAndSound,
		config.NotificationOnly,
		config.SoundOnly,
		config.Silent,
	}

	modeNames := make([]string, 0, len(modes))
	for _, m := range modes {
		modeNames = append(modeNames, string(m))
	}

	return &cobra.Command{
		Use:     "notification-mode [mode]",
		Short:   "Show or set how timer expiry is announced",
		GroupID: gSettings,
		Long: fmt.Sprintf(`Show or set how timer expiry is announced.

Without an argument, the current mode is printed. Valid modes: %s.`, strings.Join(modeNames, ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				conf, err := apiClient.GetConfig()
				if err != nil {
					return fmt.Errorf("failed to get config: %v", err)
				}
				mode := config.NotificationAndSound
				if conf.NotificationMode != nil {
					mode = *conf.NotificationMode
				}
				cmd.Println(mode)
				return nil
			}

			mode := config.NotificationMode(args[0])
			if !mode.Valid() {
				return fmt.Errorf("unknown notification mode %q, valid modes: %s", args[0], strings.Join(modeNames, ", "))
			}

			if _, err := apiClient.SetNotificationMode(mode); err != nil {
				return fmt.Errorf("failed to set notification mode: %v", err)
			}

			logrus.Infof("set notification mode to %s", mode)

			return nil
		},
	}
}
