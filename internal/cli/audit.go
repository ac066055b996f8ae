package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clauserisk/internal/audit"
)

var auditLimit int

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of past analyses",
	Long: `Every analysis writes one audit record: time, overall risk, clause count
and parties. Records go to JSON files (audit.backend: file, in audit.dir) or
to a SQLite table (audit.backend: sqlite, at audit.sqlite_path).`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sink, err := audit.NewSink(cfg.Audit, slog.Default())
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer func() { _ = sink.Close() }()

		records, err := sink.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return fmt.Errorf("read audit log: %w", err)
		}

		if len(records) == 0 {
			fmt.Fprintf(os.Stderr, "No audit records found (%s backend)\n", cfg.Audit.Backend)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tRISK\tCLAUSES\tPARTIES\tSOURCE")
		for _, r := range records {
			parties := strings.Join(r.Parties, "; ")
			if parties == "" {
				parties = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Time, r.Risk, r.Clauses, parties, r.Source)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of records to show (0 for all)")
}
