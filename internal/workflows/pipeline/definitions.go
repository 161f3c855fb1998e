package pipeline

import (
	hatchetLib "github.com/hatchet-dev/hatchet/sdks/go"

	"github.com/accidents-lab/pipeline-orchestrator/internal/config"
	hatchet_ext "github.com/accidents-lab/pipeline-orchestrator/internal/core/hatchet-ext"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/notify"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/sensor"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/tasks"
)

// DefaultWorkflowName matches the pipeline.workflow_name config default.
const DefaultWorkflowName hatchet_ext.WorkflowName = "us-accidents-pipeline"

type FailureHandlerOutput struct {
	Outcome      sensor.Outcome `json:"outcome"`
	ErrorDetails string         `json:"error_details"`
}

func unitTask(unit tasks.Unit) hatchet_ext.Task[runconfig.RunConfig, tasks.Result] {
	return hatchet_ext.WTask(func(
		ctx hatchetLib.Context,
		input *runconfig.RunConfig,
	) (*tasks.Result, error) {
		taskCtx := tasks.WithRunId(hatchet_ext.TaskContext(ctx), ids.ParseRunId(ctx.WorkflowRunId()))
		return unit.Run(taskCtx, *input)
	})
}

func failureEvent(jobName, runId string, stepErrors map[string]string) notify.FailureEvent {
	return notify.FailureEvent{
		JobName:      jobName,
		RunId:        runId,
		ErrorMessage: hatchet_ext.FormatStepErrors(stepErrors),
	}
}

// PipelineWorkflow registers ingestion -> transform -> (reporting, archive)
// with the failure sensor as the on-failure step. Run input is a
// runconfig.RunConfig.
func PipelineWorkflow(
	c *hatchetLib.Client,
	cfg config.PipelineConfig,
	deps *Deps,
) *hatchetLib.Workflow {
	workflow := c.NewWorkflow(
		cfg.WorkflowName,
		hatchetLib.WithWorkflowDescription("US accidents ingestion, dbt build and reporting refresh"),
	)

	ingestionTask := workflow.NewTask(
		deps.Ingestion.Name(),
		unitTask(deps.Ingestion),
		hatchetLib.WithExecutionTimeout(cfg.TaskTimeout),
	)

	transformTask := workflow.NewTask(
		deps.Transform.Name(),
		unitTask(deps.Transform),
		hatchetLib.WithParents(ingestionTask),
		hatchetLib.WithExecutionTimeout(cfg.BuildTimeout),
	)

	workflow.NewTask(
		deps.Reporting.Name(),
		unitTask(deps.Reporting),
		hatchetLib.WithParents(transformTask),
		hatchetLib.WithExecutionTimeout(cfg.TaskTimeout),
	)

	if deps.Archive != nil {
		workflow.NewTask(
			deps.Archive.Name(),
			unitTask(deps.Archive),
			hatchetLib.WithParents(transformTask),
			hatchetLib.WithExecutionTimeout(cfg.TaskTimeout),
		)
	}

	workflow.OnFailure(func(
		ctx hatchetLib.Context,
		_ runconfig.RunConfig,
	) (FailureHandlerOutput, error) {
		ev := failureEvent(cfg.WorkflowName, ctx.WorkflowRunId(), ctx.StepRunErrors())
		outcome := deps.Sensor.Handle(hatchet_ext.TaskContext(ctx), ev)
		return FailureHandlerOutput{
			Outcome:      outcome,
			ErrorDetails: ev.ErrorMessage,
		}, nil
	})

	return workflow
}
