package stops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/bbernstein/parentstops/pkg/http/client"
)

// Scheme identifies where a stop table lives
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeS3   Scheme = "s3"
	SchemeHTTP Scheme = "http"
)

// ErrReadOnly is returned when saving to a location that only supports reads
var ErrReadOnly = errors.New("location is read-only")

// Location is a parsed table address: a local path, s3://bucket/key or an
// http(s) URL.
type Location struct {
	Scheme Scheme
	// Path is the file path, the S3 key or the full URL
	Path   string
	Bucket string
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		return "s3://" + l.Bucket + "/" + l.Path
	default:
		return l.Path
	}
}

// ParseLocation classifies a table address
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("empty location")
	}

	switch {
	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("parsing %q: %w", raw, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("s3 location %q needs a bucket and a key", raw)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Path: key}, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return Location{Scheme: SchemeHTTP, Path: raw}, nil
	case strings.HasPrefix(raw, "file://"):
		return Location{Scheme: SchemeFile, Path: strings.TrimPrefix(raw, "file://")}, nil
	}
	return Location{Scheme: SchemeFile, Path: raw}, nil
}

// Store reads and writes stop tables wherever they live
type Store struct {
	s3   S3Client
	http client.Interface
}

type StoreOption func(*Store)

// WithS3Client enables s3:// locations
func WithS3Client(c S3Client) StoreOption {
	return func(s *Store) {
		s.s3 = c
	}
}

// WithHTTPClient enables http(s) locations
func WithHTTPClient(c client.Interface) StoreOption {
	return func(s *Store) {
		s.http = c
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the raw bytes stored at location
func (s *Store) Open(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case SchemeS3:
		if s.s3 == nil {
			return nil, fmt.Errorf("no S3 client configured for %s", loc)
		}
		return getObject(ctx, s.s3, loc.Bucket, loc.Path)
	case SchemeHTTP:
		if s.http == nil {
			return nil, fmt.Errorf("no HTTP client configured for %s", loc)
		}
		resp, err := s.http.Get(ctx, loc.Path)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", loc, err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %s: unexpected status %d", loc, resp.StatusCode)
		}
		return resp.Body, nil
	}

	data, err := os.ReadFile(loc.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	return data, nil
}

// Save writes data to location, creating parent directories for local files
func (s *Store) Save(ctx context.Context, location string, data []byte) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}

	switch loc.Scheme {
	case SchemeS3:
		if s.s3 == nil {
			return fmt.Errorf("no S3 client configured for %s", loc)
		}
		return putObject(ctx, s.s3, loc.Bucket, loc.Path, data)
	case SchemeHTTP:
		return fmt.Errorf("saving %s: %w", loc, ErrReadOnly)
	}

	if dir := filepath.Dir(loc.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(loc.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", loc, err)
	}
	return nil
}

// LoadTable opens location and parses it as a stop table
func (s *Store) LoadTable(ctx context.Context, location string) (*models.Table, error) {
	data, err := s.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	table, err := ReadTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", location, err)
	}
	return table, nil
}

// SaveTable serializes table and saves it to location
func (s *Store) SaveTable(ctx context.Context, location string, table *models.Table) error {
	var buf bytes.Buffer
	if err := WriteTable(&buf, table); err != nil {
		return err
	}
	return s.Save(ctx, location, buf.Bytes())
}
