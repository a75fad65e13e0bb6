package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

func newAuditCmd() *cobra.Command {
	var (
		target string
		action string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the change history (admin)",
		Long: `Show the audit log, newest first.

Pass --target with a page, comment, backup or user id to see its history,
or --action (for example page.delete) to see every change of one kind.`,
		Example: `  watlas audit --target 6f1c...
  watlas audit --action user.role --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, func(d *Deps) error {
				result, err := d.App.Audit.Handle(cmd.Context(), d.Session, services.AuditQuery{
					TargetID: target,
					Action:   action,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				if result.Total == 0 {
					fmt.Println("No audit entries found.")
					return nil
				}
				displayAuditTable(os.Stdout, result.Entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Id of the page, comment, backup or user")
	cmd.Flags().StringVar(&action, "action", "", "Action name, e.g. page.update")
	cmd.Flags().IntVarP(&limit, "limit", "n", services.DefaultAuditLimit, "Maximum number of entries")
	cmd.MarkFlagsMutuallyExclusive("target", "action")
	cmd.MarkFlagsOneRequired("target", "action")

	return cmd
}

func displayAuditTable(w io.Writer, entries []entities.AuditEntry) {
	fmt.Fprintf(w, "%-20s %-16s %-38s %-38s %s\n", "TIME", "ACTION", "ACTOR", "TARGET", "DETAILS")
	fmt.Fprintf(w, "%-20s %-16s %-38s %-38s %s\n", "----", "------", "-----", "------", "-------")
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s %-16s %-38s %-38s %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.ActorID, e.TargetID, formatDetails(e.Details))
	}
}

// formatDetails renders details as sorted key=value pairs.
func formatDetails(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
