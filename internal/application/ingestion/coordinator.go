package ingestion

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"papergraph-backend/internal/service/llm"
)

// Extractor produces a raw extraction payload for paper sections.
type Extractor interface {
	ExtractKnowledgeGraph(ctx context.Context, sections []llm.Section) ([]byte, error)
}

// Outcome reports how one ingestion run ended.
type Outcome struct {
	Ticket uint64 `json:"ticket"`
	Report Report `json:"report"`
	// Stale is set when a newer run was installed first; the result was
	// discarded and the live graph left as the newer run made it.
	Stale bool  `json:"stale"`
	Err   error `json:"-"`
}

// Applied reports whether the run replaced the live graph.
func (o Outcome) Applied() bool { return o.Err == nil && !o.Stale }

// Coordinator serializes ingestion runs against the live store. Every run
// takes a ticket when it starts; installs happen one at a time and a run
// older than the last installed one is discarded, so the most recently
// triggered successful run always ends up live.
type Coordinator struct {
	adapter   *Adapter
	extractor Extractor
	logger    *zap.Logger

	tickets   atomic.Uint64
	mu        sync.Mutex
	installed uint64
	inflight  sync.WaitGroup
}

// NewCoordinator creates a coordinator around adapter.
func NewCoordinator(adapter *Adapter, extractor Extractor, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		adapter:   adapter,
		extractor: extractor,
		logger:    logger,
	}
}

// Trigger starts an extraction for sections in the background and returns
// a channel that receives exactly one Outcome. The live graph keeps serving
// the previous contents until the install step.
func (c *Coordinator) Trigger(ctx context.Context, sections []llm.Section) <-chan Outcome {
	ticket := c.tickets.Add(1)
	out := make(chan Outcome, 1)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(out)
		out <- c.run(ctx, ticket, sections)
	}()
	return out
}

// Apply ingests an already extracted payload synchronously, under the same
// ordering rules as Trigger.
func (c *Coordinator) Apply(ctx context.Context, payload []byte) Outcome {
	ticket := c.tickets.Add(1)
	return c.applyPayload(ctx, ticket, payload)
}

// Wait blocks until every triggered run has delivered its outcome.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// LastInstalled returns the ticket of the run currently live, 0 if none.
func (c *Coordinator) LastInstalled() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installed
}

func (c *Coordinator) run(ctx context.Context, ticket uint64, sections []llm.Section) Outcome {
	ctx, span := c.adapter.tracer.Start(ctx, "ingestion.extract",
		trace.WithAttributes(
			attribute.Int64("ingestion.ticket", int64(ticket)),
			attribute.Int("sections", len(sections)),
		))
	defer span.End()

	payload, err := c.extractor.ExtractKnowledgeGraph(ctx, sections)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		c.adapter.metrics.RecordIngestion(OutcomeFailed, Report{})
		c.logger.Warn("Extraction failed, keeping current graph",
			zap.Uint64("ticket", ticket),
			zap.Error(err),
		)
		return Outcome{Ticket: ticket, Err: err}
	}
	return c.applyPayload(ctx, ticket, payload)
}

func (c *Coordinator) applyPayload(ctx context.Context, ticket uint64, payload []byte) Outcome {
	built, report, err := c.adapter.prepare(ctx, payload)
	if err != nil {
		return Outcome{Ticket: ticket, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket < c.installed {
		c.adapter.metrics.RecordIngestion(OutcomeStale, report)
		c.logger.Info("Discarded stale ingestion",
			zap.Uint64("ticket", ticket),
			zap.Uint64("installed", c.installed),
		)
		return Outcome{Ticket: ticket, Report: report, Stale: true}
	}

	c.adapter.install(built, report)
	c.installed = ticket
	return Outcome{Ticket: ticket, Report: report}
}
