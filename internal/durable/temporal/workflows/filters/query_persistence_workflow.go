package filters

import (
	"go.temporal.io/sdk/workflow"

	filteractivities "github.com/Apurer/go-adoption-filters/internal/durable/temporal/activities/filters"
	"github.com/Apurer/go-adoption-filters/internal/durable/temporal/sequences"
)

const (
	// QueryPersistenceWorkflowName is the public identifier for registering the workflow.
	QueryPersistenceWorkflowName = "filters.workflows.PersistQuery"
	// QueryPersistenceTaskQueue is the queue consumed by the worker storing filter preferences.
	QueryPersistenceTaskQueue = "FILTER_PREFERENCES"
)

// QueryPersistenceWorkflowInput carries a committed query to durable storage.
type QueryPersistenceWorkflowInput struct {
	Command filteractivities.PersistQueryInput
	TraceID string
}

// QueryPersistenceWorkflow stores a committed filter query with retries.
func QueryPersistenceWorkflow(ctx workflow.Context, input QueryPersistenceWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	key := input.Command.Key
	logger.Info("QueryPersistenceWorkflow started", withTraceID(input.TraceID, "key", key)...)
	if err := sequences.RunQueryPersistenceSequence(ctx, input.Command); err != nil {
		logger.Error("QueryPersistenceWorkflow failed", withTraceID(input.TraceID, "key", key, "error", err)...)
		return err
	}
	logger.Info("QueryPersistenceWorkflow completed", withTraceID(input.TraceID, "key", key)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
