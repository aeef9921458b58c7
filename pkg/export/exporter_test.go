package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Headers: []string{"ID", "Owner", "Status"},
		Rows: [][]string{
			{"req-1", "Budi", "COMPLETED"},
			{"req-2", "Sari", "SUBMITTED"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Owner,Status", lines[0])
	assert.Equal(t, "req-1,Budi,COMPLETED", lines[1])
}

func TestCSVRenderPadsShortRows(t *testing.T) {
	table := Table{
		Headers: []string{"ID", "Owner", "Status"},
		Rows:    [][]string{{"req-1"}},
	}
	data, err := NewCSVExporter().Render(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "req-1,,")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleTable(), "Transcript Requests")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output must be a PDF document")
	assert.NotEmpty(t, data)
}
