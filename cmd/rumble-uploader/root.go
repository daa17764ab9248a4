package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext())
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	var requestFile string

	rootCmd := &cobra.Command{
		Use:   "rumble-uploader [request-json]",
		Short: "Publish one video to Rumble through a remote browser",
		Long: "Publish one video to Rumble through a remote browser.\n\n" +
			"Called with a JSON request (or --request-file) it behaves like `publish`,\n" +
			"so orchestrators can invoke the binary directly.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && requestFile == "" {
				return cmd.Help()
			}
			return runPublish(cmd, ctx, args, requestFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Flags().StringVarP(&requestFile, "request-file", "f", "", "Read the request JSON from a file (- for stdin)")

	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
