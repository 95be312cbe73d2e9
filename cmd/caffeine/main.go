package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teocci/csh-caffeine/pkg/client"
	"github.com/teocci/csh-caffeine/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = defaultSocketPath()
	configPath     = defaultConfigPath()

	apiClient *client.Client
)

var (
	gBasic        = "Basic:"
	gSettings     = "Settings:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gSettings,
		gAdvanced,
	}
)

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), "caffeine.sock")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".caffeine.json")
	}
	return filepath.Join(dir, "caffeine", "config.json")
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: caffeine daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'caffeine daemon' or enable run-at-startup.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - The daemon socket belongs to another user. Run the daemon as yourself, or point --daemon-socket at your own socket.")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caffeine",
		Short: "caffeine keeps your PC awake",
		Long: `caffeine keeps your PC awake.

While active, the system is prevented from sleeping (and optionally the display from turning off). Activation can be indefinite, for a fixed duration, or paused for a while and resumed automatically.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			if daemonVersion, err := apiClient.GetVersion(); err == nil {
				if daemonVersion != version.Version {
					logrus.WithFields(logrus.Fields{
						"clientVersion": version.Version,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. caffeine may not work as expected.")
				}
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "caffeine daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewToggleCommand(),
		NewOnCommand(),
		NewOffCommand(),
		NewPauseCommand(),
		NewRemainingCommand(),
		NewStatusCommand(),
		NewDisplayCommand(),
		NewShowRemainingTimeCommand(),
		NewStartupCommand(),
		NewNotificationModeCommand(),
		NewScheduleCommand(),
		NewTrayCommand(),
	)

	return cmd
}
