package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bbernstein/parentstops/internal/publish"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dublinStops = `stop_id,stop_name,stop_lat,stop_lon
8220B1,Central P1,53.349,-6.260
8220B2,Central P2,53.350,-6.261
8220B3,Centrale P3,53.351,-6.259
8220B4,Remote P1,53.400,-6.300
`

func writeInput(t *testing.T, content string) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "stops.txt")
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))
	return dir, input
}

func TestRunEnrichesLocalFile(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE", "")
	dir, input := writeInput(t, dublinStops)
	output := filepath.Join(dir, "modified_stops.txt")
	geo := filepath.Join(dir, "stations.geojson")
	db := filepath.Join(dir, "stations.db")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"--input", input,
		"--output", output,
		"--geojson", geo,
		"--sqlite", db,
		"--log-level", "error",
	}, &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Created 1 parent stations from 4 stops.")
	assert.Contains(t, stdout.String(), "Modified stops file saved as "+output)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(written)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "stop_id,stop_name,stop_lat,stop_lon,platform_code,parent_station,location_type", lines[0])
	assert.Equal(t, "8220B1,Central P1,53.349,-6.260,1,PS1,", lines[1])
	assert.Equal(t, "8220B4,Remote P1,53.400,-6.300,1,,", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "PS1,Central,53.3"), lines[5])
	assert.True(t, strings.HasSuffix(lines[5], ",,,1"), lines[5])

	data, err := os.ReadFile(geo)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "PS1", fc.Features[0].Properties["stop_id"])

	sqlite, err := publish.OpenSQLite(context.Background(), db)
	require.NoError(t, err)
	defer sqlite.Close()
	runID := fc.Features[0].Properties["run_id"].(string)
	records, err := sqlite.Stations(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Central", records[0].Name)
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE", "")
	dir, input := writeInput(t, dublinStops)
	output := filepath.Join(dir, "out.txt")
	cfgFile := filepath.Join(dir, "parentstops.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("threshold: 100\nstation_id_prefix: FILE\n"), 0o644))

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-i", input, "-o", output, "-c", cfgFile,
		"--id-prefix", "STN",
		"--log-level", "error",
	}, &stdout)
	require.NoError(t, err)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	// threshold 100 from the file keeps Centrale apart, leaving a two stop group
	assert.Contains(t, string(written), "8220B1,Central P1,53.349,-6.260,1,STN1,")
	assert.Contains(t, string(written), "8220B3,Centrale P3,53.351,-6.259,3,,")
	assert.NotContains(t, string(written), "FILE1")
}

func TestRunStrictReportsAmbiguity(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE", "")
	dir, input := writeInput(t, `stop_id,stop_name,stop_lat,stop_lon
1,Kent P1,51.0,-1.0
2,Kenton P1,51.0,-1.0
3,Kenton P2,51.0,-1.0
4,Kentonia P1,51.0,-1.0
`)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-i", input, "-o", filepath.Join(dir, "out.txt"),
		"--threshold", "75", "--strict", "--log-level", "error",
	}, &stdout)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errIncomplete))
	assert.Contains(t, stdout.String(), "warning: prefix")
	_, statErr := os.Stat(filepath.Join(dir, "out.txt"))
	assert.NoError(t, statErr, "output is still written")
}

func TestRunWritesNoOutputWhenPublishingFails(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE", "")
	dir, input := writeInput(t, dublinStops)
	output := filepath.Join(dir, "modified_stops.txt")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-i", input, "-o", output,
		// the input file sits where a directory is needed
		"--geojson", filepath.Join(input, "stations.geojson"),
		"--log-level", "error",
	}, &stdout)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing parent stations")
	assert.NoFileExists(t, output)
	assert.Empty(t, stdout.String())
}

func TestRunErrors(t *testing.T) {
	t.Setenv("DYNAMODB_TABLE", "")
	dir, input := writeInput(t, "stop_id,stop_name\n1,Central P1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing column", args: []string{"-i", input, "-o", filepath.Join(dir, "o.txt")}, want: "stop_lat"},
		{name: "missing input", args: []string{"-i", filepath.Join(dir, "nope.txt")}, want: "nope.txt"},
		{name: "bad zone", args: []string{"-i", input, "--utm-zone", "0"}, want: "zone"},
		{name: "unknown flag", args: []string{"--bogus"}, want: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), append(tt.args, "--log-level", "error"), &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
