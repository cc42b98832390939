package prefix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	extractor, err := NewExtractor("")
	require.NoError(t, err)

	tests := []struct {
		name         string
		stopName     string
		wantOK       bool
		wantPrefix   string
		wantPlatform string
	}{
		{
			name:         "simple platform",
			stopName:     "Central P1",
			wantOK:       true,
			wantPrefix:   "Central",
			wantPlatform: "1",
		},
		{
			name:         "parentheses and hyphen",
			stopName:     "Heuston (Luas) - West P12",
			wantOK:       true,
			wantPrefix:   "Heuston (Luas) - West",
			wantPlatform: "12",
		},
		{
			name:         "unicode letters",
			stopName:     "Baile Átha Cliath P3",
			wantOK:       true,
			wantPrefix:   "Baile Átha Cliath",
			wantPlatform: "3",
		},
		{
			name:         "name starting with P keeps the last platform marker",
			stopName:     "Parnell P4",
			wantOK:       true,
			wantPrefix:   "Parnell",
			wantPlatform: "4",
		},
		{
			name:     "no platform marker",
			stopName: "Connolly Station",
			wantOK:   false,
		},
		{
			name:     "blank prefix",
			stopName: "P7",
			wantOK:   false,
		},
		{
			name:     "empty name",
			stopName: "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Extract(tt.stopName)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantPrefix, got.Prefix)
				assert.Equal(t, tt.wantPlatform, got.PlatformCode)
			}
		})
	}
}

func TestNewExtractorRejectsBadPatterns(t *testing.T) {
	_, err := NewExtractor(`(unclosed`)
	assert.Error(t, err)

	_, err = NewExtractor(`(\w+) P\d+`)
	assert.Error(t, err, "one capture group is not enough")
}

func TestNewExtractorCustomPattern(t *testing.T) {
	extractor, err := NewExtractor(`^(.+?)\s+Quai\s+(\d+)$`)
	require.NoError(t, err)

	got, ok := extractor.Extract("Gare du Nord Quai 5")
	require.True(t, ok)
	assert.Equal(t, "Gare du Nord", got.Prefix)
	assert.Equal(t, "5", got.PlatformCode)
}
