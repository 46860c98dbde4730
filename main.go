package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mch/internal/logging"
	"mch/internal/startup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Fatal("command failed: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mch",
		Short: "Thread content server",
		Long: `mch serves thread content over HTTP with gzip compression,
If-Modified-Since revalidation and single byte-range retrieval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Loads configuration, opens the content source and serves it behind the response middleware chain until SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "mch %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		},
	}
}
