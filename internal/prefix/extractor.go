package prefix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bbernstein/parentstops/internal/models"
)

// DefaultPattern matches a run of letters, digits, whitespace, parentheses and
// hyphens followed by "P" and the platform number, e.g. "Heuston (Luas) P2".
const DefaultPattern = `([\p{L}\p{N}_\s\(\)\-]*)P(\p{Nd}+)`

// Extractor splits stop names into a prefix and a platform code
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor compiles pattern, which must have exactly two capture groups:
// the prefix and the platform code. An empty pattern selects DefaultPattern.
func NewExtractor(pattern string) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling prefix pattern: %w", err)
	}
	if re.NumSubexp() != 2 {
		return nil, fmt.Errorf("prefix pattern must have 2 capture groups, got %d", re.NumSubexp())
	}
	return &Extractor{pattern: re}, nil
}

// Extract returns the first match in name. Names without a match, or whose
// prefix is blank once trimmed, report false and stay out of clustering.
func (e *Extractor) Extract(name string) (models.ExtractedPrefix, bool) {
	m := e.pattern.FindStringSubmatch(name)
	if m == nil {
		return models.ExtractedPrefix{}, false
	}
	p := models.ExtractedPrefix{
		Prefix:       strings.TrimSpace(m[1]),
		PlatformCode: strings.TrimSpace(m[2]),
	}
	if p.Prefix == "" {
		return models.ExtractedPrefix{}, false
	}
	return p, true
}
