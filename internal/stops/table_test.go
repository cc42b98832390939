package stops

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStops = `stop_id,stop_code,stop_name,stop_lat,stop_lon,zone_id
8220B1,1,Central P1,53.349,-6.260,
8220B2,2,"Central P2, Eden Quay",53.350,-6.261,Z1
8220B4,4,Remote P1,53.400,-6.300,
`

func TestReadTable(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleStops))
	require.NoError(t, err)

	assert.Equal(t, []string{"stop_id", "stop_code", "stop_name", "stop_lat", "stop_lon", "zone_id"}, table.Columns)
	require.Len(t, table.Rows, 3)

	row := table.Rows[1]
	assert.Equal(t, "8220B2", row.ID)
	assert.Equal(t, "Central P2, Eden Quay", row.Name)
	assert.Equal(t, "53.350", row.Latitude)
	assert.Equal(t, "-6.261", row.Longitude)
	assert.Equal(t, "2", row.Extra["stop_code"])
	assert.Equal(t, "Z1", row.Extra["zone_id"])
}

func TestReadTableStripsByteOrderMark(t *testing.T) {
	table, err := ReadTable(strings.NewReader("\ufeffstop_id,stop_name,stop_lat,stop_lon\nA,Alpha,1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, "stop_id", table.Columns[0])
	assert.Equal(t, "A", table.Rows[0].ID)
}

func TestReadTableRejectsMissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no longitude", input: "stop_id,stop_name,stop_lat\nA,Alpha,1\n", want: "stop_lon"},
		{name: "no name", input: "stop_id,stop_lat,stop_lon\n", want: "stop_name"},
		{name: "empty input", input: "", want: "empty input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadTableToleratesShortRows(t *testing.T) {
	table, err := ReadTable(strings.NewReader("stop_id,stop_name,stop_lat,stop_lon,zone_id\nA,Alpha,1,2\n"))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Empty(t, table.Rows[0].Field("zone_id"))
}

func TestWriteTablePreservesColumnsAndBlanks(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleStops))
	require.NoError(t, err)

	table.EnsureColumn(models.ColumnPlatformCode)
	table.EnsureColumn(models.ColumnParentStation)
	table.EnsureColumn(models.ColumnLocationType)
	table.Rows[0].PlatformCode = "1"
	table.Rows[0].ParentStation = "PS1"
	table.Append(models.NewParentStation("PS1", "Central", models.Coordinate{Latitude: 53.5, Longitude: -6.25}))

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))

	want := `stop_id,stop_code,stop_name,stop_lat,stop_lon,zone_id,platform_code,parent_station,location_type
8220B1,1,Central P1,53.349,-6.260,,1,PS1,
8220B2,2,"Central P2, Eden Quay",53.350,-6.261,Z1,,,
8220B4,4,Remote P1,53.400,-6.300,,,,
PS1,,Central,53.5,-6.25,,,,1
`
	assert.Equal(t, want, buf.String())
}

func TestTableRoundTripIsLossless(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleStops))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))
	assert.Equal(t, sampleStops, buf.String())
}
