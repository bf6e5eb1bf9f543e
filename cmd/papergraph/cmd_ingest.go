package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"papergraph-backend/internal/application/commands"
	"papergraph-backend/internal/application/ingestion"
	"papergraph-backend/internal/di"
	"papergraph-backend/internal/service/llm"
)

func newIngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <payload.json>",
		Short: "Replace the graph with an extraction payload",
		Long: `Install a {"nodes": [...], "edges": [...]} extraction payload as the
paper's graph. Malformed payloads leave the stored graph untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.withGraph(cmd.Context(), true, func(ctx context.Context, c *di.Container) error {
				return a.printOutcome(c.Coordinator.Apply(ctx, payload))
			})
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <sections.json>",
		Short: "Run extraction over paper sections and install the result",
		Long: `Read [{"title": ..., "content": ...}] sections, ask the configured
extraction provider for a knowledge graph and install it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var input commands.IngestCommand
			if err := json.Unmarshal(raw, &input.Sections); err != nil {
				return fmt.Errorf("parse sections: %w", err)
			}
			if err := commands.Validate(input); err != nil {
				return err
			}
			sections := make([]llm.Section, 0, len(input.Sections))
			for _, s := range input.Sections {
				sections = append(sections, llm.Section{Title: s.Title, Content: s.Content})
			}
			return a.withGraph(cmd.Context(), true, func(ctx context.Context, c *di.Container) error {
				return a.printOutcome(<-c.Coordinator.Trigger(ctx, sections))
			})
		},
	}
}

func (a *app) printOutcome(o ingestion.Outcome) error {
	if o.Err != nil {
		return o.Err
	}
	if a.jsonOut {
		return a.printJSON(o)
	}
	r := o.Report
	fmt.Printf("Installed %d nodes, %d edges\n", r.NodesAdded, r.EdgesAdded)
	if r.DroppedEdges > 0 || r.SkippedNodes > 0 {
		fmt.Printf("  skipped nodes: %d, dropped edges: %d\n", r.SkippedNodes, r.DroppedEdges)
	}
	if n := r.DefaultedKinds + r.DefaultedRelationships + r.DefaultedValues; n > 0 {
		fmt.Printf("  defaulted fields: %d\n", n)
	}
	if n := r.ClampedImportance + r.ClampedStrength; n > 0 {
		fmt.Printf("  clamped values: %d\n", n)
	}
	return nil
}
