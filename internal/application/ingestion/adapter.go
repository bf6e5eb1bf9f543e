// Package ingestion converts extraction payloads into graph contents and
// installs them into the live store.
package ingestion

import (
	"context"
	"math"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
)

// DerivedDescription is the description given to every ingested node.
const DerivedDescription = "derived concept"

// Report counts the soft conditions met while building a graph. None of
// them fail an ingestion.
type Report struct {
	NodesAdded             int `json:"nodesAdded"`
	EdgesAdded             int `json:"edgesAdded"`
	SkippedNodes           int `json:"skippedNodes"`
	DuplicateNodes         int `json:"duplicateNodes"`
	DefaultedKinds         int `json:"defaultedKinds"`
	DefaultedRelationships int `json:"defaultedRelationships"`
	DefaultedValues        int `json:"defaultedValues"`
	ClampedImportance      int `json:"clampedImportance"`
	ClampedStrength        int `json:"clampedStrength"`
	DroppedEdges           int `json:"droppedEdges"`
}

// Metrics receives ingestion outcomes.
type Metrics interface {
	RecordIngestion(outcome string, report Report)
}

type noopMetrics struct{}

func (noopMetrics) RecordIngestion(string, Report) {}

// Outcome labels.
const (
	OutcomeApplied   = "applied"
	OutcomeStale     = "stale"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Adapter builds graphs from producer envelopes.
type Adapter struct {
	live    *graph.Store
	logger  *zap.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) AdapterOption {
	return func(a *Adapter) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) AdapterOption {
	return func(a *Adapter) {
		if t != nil {
			a.tracer = t
		}
	}
}

// NewAdapter creates an adapter installing into live.
func NewAdapter(live *graph.Store, logger *zap.Logger, opts ...AdapterOption) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		live:    live,
		logger:  logger,
		metrics: noopMetrics{},
		tracer:  otel.Tracer("papergraph/ingestion"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Live returns the store the adapter installs into.
func (a *Adapter) Live() *graph.Store { return a.live }

func (a *Adapter) prepare(ctx context.Context, payload []byte) (*graph.Store, Report, error) {
	_, span := a.tracer.Start(ctx, "ingestion.prepare",
		trace.WithAttributes(attribute.Int("payload.bytes", len(payload))))
	defer span.End()

	env, err := Parse(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed input")
		a.metrics.RecordIngestion(OutcomeMalformed, Report{})
		a.logger.Warn("Rejected malformed ingestion input", zap.Error(err))
		return nil, Report{}, err
	}

	built, report := a.Build(env)
	span.SetAttributes(
		attribute.Int("nodes.added", report.NodesAdded),
		attribute.Int("edges.added", report.EdgesAdded),
		attribute.Int("edges.dropped", report.DroppedEdges),
	)
	return built, report, nil
}

func (a *Adapter) install(built *graph.Store, report Report) {
	a.live.ReplaceWith(built)
	a.metrics.RecordIngestion(OutcomeApplied, report)
	a.logger.Info("Ingestion applied",
		zap.Int("nodes", report.NodesAdded),
		zap.Int("edges", report.EdgesAdded),
		zap.Int("dropped_edges", report.DroppedEdges),
		zap.Int("skipped_nodes", report.SkippedNodes),
	)
}

// Build converts an envelope into a new store. Every node gets a fresh id,
// its external id as title and the derived description. Edges whose
// endpoints do not resolve are dropped.
func (a *Adapter) Build(env Envelope) (*graph.Store, Report) {
	var report Report
	built := graph.NewStore(graph.WithLogger(a.logger))
	lookup := make(map[string]shared.NodeID, len(env.Nodes))

	for i, raw := range env.Nodes {
		externalID := raw.ID
		if strings.TrimSpace(externalID) == "" {
			report.SkippedNodes++
			a.logger.Debug("Skipped node without external id", zap.Int("index", i))
			continue
		}

		kind, ok := shared.NodeKindOrDefault(raw.KindTag())
		if !ok {
			report.DefaultedKinds++
			a.logger.Debug("Defaulted node kind",
				zap.String("external_id", externalID),
				zap.String("tag", raw.KindTag()),
			)
		}

		importance := shared.DefaultImportance
		if raw.Importance == nil || math.IsNaN(*raw.Importance) {
			report.DefaultedValues++
		} else {
			rounded := int(math.Round(math.Max(math.Min(*raw.Importance, 1e6), -1e6)))
			importance = shared.ClampImportance(rounded)
			if importance != rounded {
				report.ClampedImportance++
				a.logger.Debug("Clamped node importance",
					zap.String("external_id", externalID),
					zap.Float64("importance", *raw.Importance),
				)
			}
		}

		opts := []node.Option{
			node.WithDescription(DerivedDescription),
			node.WithKind(kind),
			node.WithImportance(importance),
		}
		if existing, dup := lookup[externalID]; dup {
			report.DuplicateNodes++
			a.logger.Debug("Duplicate external id, later values win",
				zap.String("external_id", externalID))
			opts = append(opts, node.WithID(existing))
		}

		n := node.New(externalID, opts...)
		if err := built.AddNode(n); err != nil {
			report.SkippedNodes++
			a.logger.Warn("Skipped invalid node",
				zap.String("external_id", externalID),
				zap.Error(err),
			)
			continue
		}
		if _, dup := lookup[externalID]; !dup {
			report.NodesAdded++
		}
		lookup[externalID] = n.ID
	}

	for i, raw := range env.Edges {
		sourceID, sourceOK := lookup[raw.Source]
		targetID, targetOK := lookup[raw.Target]
		if !sourceOK || !targetOK {
			report.DroppedEdges++
			a.logger.Debug("Dropped edge with unresolved endpoint",
				zap.Int("index", i),
				zap.String("source", raw.Source),
				zap.String("target", raw.Target),
				zap.Bool("source_resolved", sourceOK),
				zap.Bool("target_resolved", targetOK),
			)
			continue
		}

		relationship, ok := shared.RelationTypeOrDefault(raw.Relationship)
		if !ok {
			report.DefaultedRelationships++
			a.logger.Debug("Defaulted edge relationship",
				zap.String("source", raw.Source),
				zap.String("target", raw.Target),
				zap.String("tag", raw.Relationship),
			)
		}

		strength := shared.DefaultStrength
		if raw.Strength == nil {
			report.DefaultedValues++
		} else {
			strength = shared.ClampStrength(*raw.Strength)
			if strength != *raw.Strength {
				report.ClampedStrength++
			}
		}

		if err := built.AddEdge(edge.New(sourceID, targetID, relationship, strength)); err != nil {
			report.DroppedEdges++
			a.logger.Warn("Dropped edge rejected by store", zap.Error(err))
			continue
		}
		report.EdgesAdded++
	}

	return built, report
}
