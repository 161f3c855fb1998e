package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accidents-lab/pipeline-orchestrator/internal/config"
	hatchet_ext "github.com/accidents-lab/pipeline-orchestrator/internal/core/hatchet-ext"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/notify"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/sensor"
	"github.com/accidents-lab/pipeline-orchestrator/internal/workflows/pipeline"
)

type configLoader func() (*config.Config, error)

func newTriggerCommand() *cobra.Command {
	var flags runFlags
	var workflowName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pipeline run on the Hatchet workers and wait for it",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.NewFromEnv()
			c, err := hatchet_ext.HatchetClient()
			if err != nil {
				return err
			}
			result, err := c.Run(cmd.Context(), workflowName, flags.runConfig())
			if err != nil {
				return fmt.Errorf("workflow %s failed: %w", workflowName, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&workflowName, "workflow", pipeline.DefaultWorkflowName, "Workflow name registered by the worker")
	return cmd
}

func newLocalCommand(load configLoader) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run the pipeline in this process without Hatchet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			runCfg := flags.runConfig()
			if runCfg.Decide() == runconfig.DecisionExecute {
				if err := cfg.ValidateIngestion(); err != nil {
					return err
				}
			}
			deps, err := pipeline.NewDeps(cmd.Context(), cfg, logger.Global())
			if err != nil {
				return err
			}
			defer deps.Close()

			report, runErr := pipeline.RunLocal(cmd.Context(), cfg.Pipeline.WorkflowName, deps, runCfg)
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return runErr
		},
	}
	flags.register(cmd)
	return cmd
}

func newTestAlertCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "test-alert",
		Short: "Send a sample failure alert through the configured mail transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			deps, err := pipeline.NewDeps(cmd.Context(), cfg, logger.Global())
			if err != nil {
				return err
			}
			defer deps.Close()

			outcome := deps.Sensor.Handle(cmd.Context(), notify.FailureEvent{
				JobName:      cfg.Pipeline.WorkflowName,
				RunId:        ids.NewRunId().String(),
				ErrorMessage: "test alert sent from the pipeline CLI",
			})
			if outcome != sensor.OutcomeAlerted {
				return fmt.Errorf("test alert not sent: %s", outcome)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test alert sent")
			return nil
		},
	}
}
