package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/export"
	"github.com/scoutline/scout-cli/internal/model"
)

var resultsCmd = &cobra.Command{
	Use:   "results <scan-id>",
	Short: "Show the scored prospects of a scan",
	Long: `Lists the prospects of a finished scan ordered by score, hottest first.
Use --xlsx to write a spreadsheet instead of the table, or --json for
machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		scan, err := st.GetScan(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "results")
		}
		prospects, err := st.ListProspects(ctx, scan.ID)
		if err != nil {
			return eris.Wrap(err, "results")
		}

		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		if xlsxPath != "" {
			return writeXLSXFile(xlsxPath, prospects)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			out := struct {
				Scan      *model.Scan      `json:"scan"`
				Prospects []model.Prospect `json:"prospects"`
			}{Scan: scan, Prospects: prospects}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if len(prospects) == 0 {
			fmt.Fprintln(os.Stderr, "No prospects found.")
			return nil
		}

		formatProspectsList(os.Stdout, prospects)
		return nil
	},
}

func init() {
	resultsCmd.Flags().String("xlsx", "", "write results to the given .xlsx file")
	resultsCmd.Flags().Bool("json", false, "print results as JSON")
	rootCmd.AddCommand(resultsCmd)
}

func writeXLSXFile(path string, prospects []model.Prospect) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create xlsx file %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := export.WriteXLSX(f, "Prospects", prospects); err != nil {
		return eris.Wrap(err, "write xlsx")
	}

	zap.L().Info("results exported",
		zap.String("path", path),
		zap.Int("prospects", len(prospects)),
	)
	return nil
}

// formatProspectsList writes a tabular list of prospects to w.
func formatProspectsList(out io.Writer, prospects []model.Prospect) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSCORE\tBUCKET\tOPPORTUNITY\tSENTIMENT")

	for _, p := range prospects {
		_, _ = fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\n",
			p.FullName,
			p.Score,
			p.Bucket,
			p.Metadata.OpportunityType,
			p.Metadata.Sentiment,
		)
	}
	_ = w.Flush()
}
