package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/scout-cli/internal/model"
)

var (
	scanText string
	scanFile string
	scanUser string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a prospect scan over raw text",
	Long: `Runs a full scan synchronously: extracts candidate names from the
input text, scores each prospect, and prints the finished scan as JSON.

Input is taken from --text, --file, or stdin, in that order.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanText, "text", "", "raw text to scan")
	scanCmd.Flags().StringVar(&scanFile, "file", "", "path to a text file to scan")
	scanCmd.Flags().StringVar(&scanUser, "user", "cli", "user ID to attribute the scan to")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, source, err := scanInput()
	if err != nil {
		return err
	}

	e, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	scan, err := e.Store.CreateScan(ctx, uuid.NewString(), scanUser, source)
	if err != nil {
		return eris.Wrap(err, "create scan")
	}
	zap.L().Info("scan created", zap.String("scan_id", scan.ID), zap.String("user_id", scanUser))

	if err := e.Pipeline.Run(ctx, scan.ID, text); err != nil {
		return eris.Wrap(err, "run scan")
	}

	done, err := e.Store.GetScan(ctx, scan.ID)
	if err != nil {
		return eris.Wrap(err, "reload scan")
	}
	prospects, err := e.Store.ListProspects(ctx, scan.ID)
	if err != nil {
		return eris.Wrap(err, "list prospects")
	}

	out := struct {
		Scan      *model.Scan      `json:"scan"`
		Prospects []model.Prospect `json:"prospects"`
	}{Scan: done, Prospects: prospects}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// scanInput resolves the scan text from --text, --file, or stdin.
func scanInput() (string, model.SourceDescriptor, error) {
	if scanText != "" {
		return scanText, model.SourceDescriptor{Type: model.SourceTypeText}, nil
	}
	if scanFile != "" {
		data, err := os.ReadFile(scanFile)
		if err != nil {
			return "", model.SourceDescriptor{}, eris.Wrapf(err, "read input file %s", scanFile)
		}
		return string(data), model.SourceDescriptor{Type: model.SourceTypeFile, PayloadRef: scanFile}, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", model.SourceDescriptor{}, eris.Wrap(err, "read stdin")
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", model.SourceDescriptor{}, eris.New("no input: provide --text, --file, or stdin")
	}
	return string(data), model.SourceDescriptor{Type: model.SourceTypeText}, nil
}
