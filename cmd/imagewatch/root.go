package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "imagewatch",
		Short: "Watch web pages for new images and links",
		Long: `imagewatch polls a set of configured pages, stores every new image/link pair,
downloads the images and reports what appeared since the last run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to read configuration from")

	cmd.AddCommand(
		newRunCommand(&envFile),
		newScheduleCommand(&envFile),
		newServeCommand(&envFile),
	)
	return cmd
}
