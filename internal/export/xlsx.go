// Package export renders scan results for humans: an XLSX workbook of
// scored prospects for handoff to whoever works the leads.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/scoutline/scout-cli/internal/model"
)

var prospectHeader = []string{
	"Name", "Score", "Bucket", "Opportunity", "Sentiment",
	"Pain Points", "Interests", "Life Events", "Snippet",
}

// WriteXLSX writes the prospects of one scan as a single-sheet workbook.
// Rows keep the caller's order, which is score-descending when they come
// from the store.
func WriteXLSX(w io.Writer, sheetName string, prospects []model.Prospect) error {
	if sheetName == "" {
		sheetName = "Prospects"
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range prospectHeader {
		header.AddCell().SetString(h)
	}

	for _, p := range prospects {
		row := sheet.AddRow()
		row.AddCell().SetString(p.FullName)
		row.AddCell().SetFloatWithFormat(p.Score, "0.0")
		row.AddCell().SetString(string(p.Bucket))
		row.AddCell().SetString(p.Metadata.OpportunityType)
		row.AddCell().SetString(p.Metadata.Sentiment)
		row.AddCell().SetString(strings.Join(p.Metadata.PainPoints, ", "))
		row.AddCell().SetString(strings.Join(p.Metadata.Interests, ", "))
		row.AddCell().SetString(strings.Join(p.Metadata.LifeEvents, ", "))
		row.AddCell().SetString(p.Snippet)
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}
