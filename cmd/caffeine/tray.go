package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teocci/csh-caffeine/pkg/tray"
	"github.com/teocci/csh-caffeine/pkg/version"
)

// NewTrayCommand reads the socket path at run time so --daemon-socket
// applies.
func NewTrayCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tray",
		Short:   "Start the caffeine tray UI",
		GroupID: gAdvanced,
		Long: `Start the caffeine tray UI.

The tray talks to a running caffeine daemon. Start one with "caffeine daemon" first, or enable run-at-startup so both come up at login.`,
		Run: func(_ *cobra.Command, _ []string) {
			logrus.WithField("version", version.Version).WithField("gitCommit", version.GitCommit).Info("caffeine tray")
			tray.Run(unixSocketPath)
		},
	}
}
