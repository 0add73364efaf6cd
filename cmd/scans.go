package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/scoutline/scout-cli/internal/model"
	"github.com/scoutline/scout-cli/internal/store"
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Inspect scan history",
	Long:  "Commands for listing scans, viewing a single scan, and replaying its progress events.",
}

// -- scans list --

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.ScanFilter{
			Status: model.ScanStatus(status),
			UserID: user,
			Limit:  limit,
		}

		scans, err := st.ListScans(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "scans list")
		}

		if len(scans) == 0 {
			fmt.Fprintln(os.Stderr, "No scans found.")
			return nil
		}

		formatScansList(os.Stdout, scans)
		return nil
	},
}

// -- scans show --

var scansShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show full details of a scan",
	Args:  cobra.ExactArgs(1),
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
			return eris.Wrap(err, "scans show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	},
}

// -- scans events --

var scansEventsCmd = &cobra.Command{
	Use:   "events <scan-id>",
	Short: "Show the ordered progress events of a scan",
	Args:  cobra.ExactArgs(1),
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

		events, err := st.ListStatusEvents(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "scans events")
		}

		if len(events) == 0 {
			fmt.Fprintln(os.Stderr, "No events recorded.")
			return nil
		}

		formatEventsList(os.Stdout, events)
		return nil
	},
}

func init() {
	scansListCmd.Flags().String("status", "", "filter by scan status (queued, processing, completed, failed)")
	scansListCmd.Flags().String("user", "", "filter by user ID")
	scansListCmd.Flags().Int("limit", 50, "max number of scans to display")

	scansCmd.AddCommand(scansListCmd)
	scansCmd.AddCommand(scansShowCmd)
	scansCmd.AddCommand(scansEventsCmd)
	rootCmd.AddCommand(scansCmd)
}

// formatScansList writes a tabular list of scans to w.
func formatScansList(out io.Writer, scans []model.Scan) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSER\tSTATUS\tHOT\tWARM\tCOLD\tTOTAL\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t---\t----\t----\t-----\t-------")

	for _, s := range scans {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			truncateID(s.ID),
			s.UserID,
			s.Status,
			s.Counts.Hot,
			s.Counts.Warm,
			s.Counts.Cold,
			s.Counts.Total,
			s.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatEventsList writes the ordered event timeline of a scan to w.
func formatEventsList(out io.Writer, events []model.ScanStatusEvent) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEQ\tSTAGE\tPERCENT\tMESSAGE\tAT")

	for i, e := range events {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d%%\t%s\t%s\n",
			i+1,
			e.Stage,
			e.Percent,
			e.Message,
			e.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
