package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/accidents-lab/pipeline-orchestrator/internal/config"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
)

type runFlags struct {
	dryRun          bool
	simulateFailure bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Skip external calls and report success")
	cmd.Flags().BoolVar(&f.simulateFailure, "simulate-failure", false, "Fail the first task to exercise alerting")
}

func (f *runFlags) runConfig() runconfig.RunConfig {
	return runconfig.RunConfig{DryRun: f.dryRun, SimulateFailure: f.simulateFailure}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Trigger or run the US accidents pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configFlag)
		if err != nil {
			return nil, err
		}
		logger.NewFromConfig(&cfg.Logger)
		return cfg, nil
	}

	rootCmd.AddCommand(newTriggerCommand())
	rootCmd.AddCommand(newLocalCommand(loadConfig))
	rootCmd.AddCommand(newTestAlertCommand(loadConfig))
	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
