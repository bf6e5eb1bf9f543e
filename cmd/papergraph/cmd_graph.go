package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"papergraph-backend/internal/di"
	"papergraph-backend/internal/serialization"
)

func newExportCmd(a *app) *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph as a JSON or YAML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			return a.withGraph(cmd.Context(), false, func(ctx context.Context, c *di.Container) error {
				doc := c.Graph.Export(ctx)
				body, err := serialization.Marshal(doc, f)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = os.Stdout.Write(body)
					return err
				}
				if err := os.WriteFile(output, body, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Exported %d nodes, %d edges to %s\n", len(doc.Nodes), len(doc.Edges), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --output extension, else json)")
	return cmd
}

func exportFormat(flag, path string) (serialization.Format, error) {
	if flag != "" {
		return serialization.ParseFormat(flag)
	}
	return serialization.FormatFromPath(path), nil
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <document>",
		Short: "Replace the graph with an exported document",
		Long:  `Import a JSON or YAML export. An invalid document leaves the stored graph unchanged.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := serialization.Unmarshal(raw, serialization.FormatFromPath(args[0]))
			if err != nil {
				return err
			}
			return a.withGraph(cmd.Context(), true, func(ctx context.Context, c *di.Container) error {
				if err := c.Graph.Import(ctx, doc); err != nil {
					return err
				}
				nodes, edges := c.Store.Len()
				if a.jsonOut {
					return a.printJSON(map[string]int{"nodes": nodes, "edges": edges})
				}
				fmt.Printf("Imported %d nodes, %d edges\n", nodes, edges)
				return nil
			})
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path <from-id> <to-id>",
		Short: "Print a shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), false, func(ctx context.Context, c *di.Container) error {
				res, err := c.Graph.ShortestPath(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(res)
				}
				if !res.Found {
					fmt.Println("No path")
					return nil
				}
				for i, id := range res.Path {
					title := id.String()
					if n, ok := c.Store.Node(id); ok {
						title = n.Title
					}
					fmt.Printf("%d. %s (%s)\n", i, title, id)
				}
				return nil
			})
		},
	}
}

func newCentralityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "centrality <node-id>",
		Short: "Print a node's betweenness centrality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), false, func(ctx context.Context, c *di.Container) error {
				score, err := c.Graph.Centrality(ctx, args[0])
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(map[string]interface{}{"nodeId": args[0], "centrality": score})
				}
				fmt.Printf("%.4f\n", score)
				return nil
			})
		},
	}
}

func newRankCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List nodes by centrality, highest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), false, func(ctx context.Context, c *di.Container) error {
				ranked := c.Graph.Rankings(ctx)
				if limit > 0 && len(ranked) > limit {
					ranked = ranked[:limit]
				}
				if a.jsonOut {
					return a.printJSON(ranked)
				}
				for i, r := range ranked {
					title := ""
					if n, ok := c.Store.Node(r.NodeID); ok {
						title = n.Title
					}
					fmt.Printf("%3d. %.4f  deg=%-3d %s\n", i+1, r.Centrality, r.Degree, title)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n nodes")
	return cmd
}

func newComponentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List connected components",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGraph(cmd.Context(), false, func(ctx context.Context, c *di.Container) error {
				comps := c.Graph.Components(ctx)
				if a.jsonOut {
					return a.printJSON(comps)
				}
				for i, comp := range comps {
					fmt.Printf("component %d (%d nodes)\n", i+1, len(comp))
					for _, id := range comp {
						if n, ok := c.Store.Node(id); ok {
							fmt.Printf("  %s\n", n.Title)
						}
					}
				}
				return nil
			})
		},
	}
}
