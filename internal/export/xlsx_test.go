package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/scoutline/scout-cli/internal/model"
)

func sampleProspects() []model.Prospect {
	return []model.Prospect{
		{
			FullName: "Maria Santos",
			Score:    82.5,
			Bucket:   model.BucketHot,
			Metadata: model.ProspectMetadata{
				Bucket:          model.BucketHot,
				PainPoints:      []string{"no time"},
				Interests:       []string{"side hustle"},
				OpportunityType: "business_opportunity",
				Sentiment:       "positive",
			},
			Snippet: "Maria Santos asked about the starter kit",
		},
		{
			FullName: "Juan Dela Cruz",
			Score:    35,
			Bucket:   model.BucketCold,
			Metadata: model.ProspectMetadata{Bucket: model.BucketCold},
		},
	}
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteXLSX(&buf, "Prospects", sampleProspects())
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	// Reopen through the library to verify the sheet layout.
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Prospects"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0]
	assert.Equal(t, "Name", header.Cells[0].String())
	assert.Equal(t, "Score", header.Cells[1].String())

	first := sheet.Rows[1]
	assert.Equal(t, "Maria Santos", first.Cells[0].String())
	assert.Equal(t, "hot", first.Cells[2].String())
	assert.Equal(t, "no time", first.Cells[5].String())
}

func TestWriteXLSX_EmptyProspects(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteXLSX(&buf, "", nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
