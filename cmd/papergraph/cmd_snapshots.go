package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"papergraph-backend/internal/di"
)

func newSnapshotsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage stored paper snapshots",
	}
	cmd.AddCommand(newSnapshotsListCmd(a), newSnapshotsDeleteCmd(a))
	return cmd
}

func newSnapshotsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *di.Container) error {
				list, err := c.Repository.List(ctx)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(list)
				}
				if len(list) == 0 {
					fmt.Println("No snapshots stored.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PAPER\tNODES\tEDGES\tUPDATED")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.PaperID, s.Nodes, s.Edges, s.UpdatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
}

func newSnapshotsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <paper-id>",
		Short: "Delete a paper's stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *di.Container) error {
				if err := c.Repository.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Deleted snapshot %s\n", args[0])
				return nil
			})
		},
	}
}
