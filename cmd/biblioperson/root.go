package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// cli holds the state shared by all subcommands.
type cli struct {
	verbose  bool
	envFile  string
	settings settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "biblioperson",
		Short:         "Segment books, poetry and articles into classified records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			explicit := cmd.Flags().Changed("env-file")
			if err := loadEnv(c.envFile, explicit); err != nil {
				return err
			}
			c.settings = settingsFromEnv()

			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "file with BIBLIOPERSON_* variables")

	root.AddCommand(newSegmentCmd(c), newDetectCmd(c), newProfilesCmd(c))
	return root
}

// pick returns the flag value when it was set, else the environment default.
func pick(cmd *cobra.Command, flag, value, env string) string {
	if cmd.Flags().Changed(flag) || env == "" {
		return value
	}
	return env
}
