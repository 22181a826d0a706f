package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	filteractivities "github.com/Apurer/go-adoption-filters/internal/durable/temporal/activities/filters"
	filterworkflows "github.com/Apurer/go-adoption-filters/internal/durable/temporal/workflows/filters"
)

var (
	_ ports.QueryPublisher = (*TemporalPublisher)(nil)
	_ ports.QueryPublisher = (*InlinePublisher)(nil)
)

// TemporalPublisher persists committed queries through a Temporal workflow.
type TemporalPublisher struct {
	client    client.Client
	taskQueue string
	await     bool
}

// PublisherOption customizes a TemporalPublisher.
type PublisherOption func(*TemporalPublisher)

// WithTaskQueue overrides the task queue the workflow is started on.
func WithTaskQueue(queue string) PublisherOption {
	return func(p *TemporalPublisher) {
		if queue != "" {
			p.taskQueue = queue
		}
	}
}

// WithAwaitCompletion makes Publish block until the workflow has stored the query.
func WithAwaitCompletion() PublisherOption {
	return func(p *TemporalPublisher) {
		p.await = true
	}
}

// NewTemporalPublisher wires a Temporal client into the publisher.
func NewTemporalPublisher(c client.Client, opts ...PublisherOption) *TemporalPublisher {
	p := &TemporalPublisher{client: c, taskQueue: filterworkflows.QueryPersistenceTaskQueue}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Publish starts the workflow that persists query under key. There is one workflow id per key and
// a newer commit terminates a running older one. Without WithAwaitCompletion it returns once the
// workflow is accepted by the cluster.
func (p *TemporalPublisher) Publish(ctx context.Context, key string, query domain.FilterQuery) error {
	if p == nil || p.client == nil {
		return errors.New("temporal query publisher not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                       WorkflowID(key),
		TaskQueue:                p.taskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
	run, err := p.client.ExecuteWorkflow(
		ctx,
		options,
		filterworkflows.QueryPersistenceWorkflowName,
		filterworkflows.QueryPersistenceWorkflowInput{
			Command: filteractivities.PersistQueryInput{Key: key, Query: query},
			TraceID: workflowTraceID(ctx),
		},
	)
	if err != nil {
		return err
	}
	if !p.await {
		return nil
	}
	return run.Get(ctx, nil)
}

// InlinePublisher writes committed queries straight to the preference store, useful for tests or
// dev fallbacks.
type InlinePublisher struct {
	store ports.PreferenceStore
}

// NewInlinePublisher wraps the store for synchronous persistence.
func NewInlinePublisher(store ports.PreferenceStore) *InlinePublisher {
	return &InlinePublisher{store: store}
}

// Publish saves the query without durable orchestration.
func (p *InlinePublisher) Publish(ctx context.Context, key string, query domain.FilterQuery) error {
	if p == nil || p.store == nil {
		return errors.New("inline query publisher not configured")
	}
	_, err := p.store.SaveQuery(ctx, key, query)
	return err
}

// WorkflowID is the persistence workflow id of a screen key.
func WorkflowID(key string) string {
	return fmt.Sprintf("filter-query-%s", key)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
