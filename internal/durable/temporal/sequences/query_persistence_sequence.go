package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	filteractivities "github.com/Apurer/go-adoption-filters/internal/durable/temporal/activities/filters"
)

// RunQueryPersistenceSequence executes the activities that store a committed filter query.
func RunQueryPersistenceSequence(ctx workflow.Context, input filteractivities.PersistQueryInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("query persistence sequence started", "key", input.Key)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, filteractivities.PersistQueryActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("query persistence sequence failed", "key", input.Key, "error", err)
		return err
	}
	logger.Info("query persistence sequence completed", "key", input.Key)
	return nil
}
