package main

import (
	"hotel/config"
	"hotel/helper"
	"hotel/shared/logger"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func actionCmd(use, short string, run func(cfg *config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(config.Get())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			version, dirty, err := helper.Version(config.Get())
			if err != nil {
				return err //nolint:wrapcheck
			}

			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema version")

			return nil
		},
	}
}

func main() {
	logger.InitLogger()

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Hotel database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		actionCmd(helper.ActionUp, "Apply all pending migrations", helper.Up),
		actionCmd(helper.ActionDown, "Roll back the last migration", helper.Down),
		actionCmd(helper.ActionStepUp, "Apply the next pending migration", helper.StepUp),
		actionCmd(helper.ActionDrop, "Roll back every migration", helper.Drop),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}
}
