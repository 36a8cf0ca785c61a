// Package dataset loads graph snapshots from local files (optionally
// snappy-compressed), readers such as stdin, and S3.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// CompressedExt marks snappy-framed files.
const CompressedExt = ".sz"

var (
	// ErrEmptySnapshot is returned for a snapshot without any node.
	ErrEmptySnapshot = errors.New("snapshot has no nodes")
	// ErrInvalidURI is returned by Open for an unusable location.
	ErrInvalidURI = errors.New("invalid snapshot location")
)

// LoadError wraps a failure to fetch or decode a snapshot.
type LoadError struct {
	Op     string // "open", "read", "decode"
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s snapshot %s: %v", e.Op, e.Source, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Source yields one snapshot.
type Source interface {
	// Kind is the metrics label of the source type.
	Kind() string
	// String describes the location for logs and errors.
	String() string
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// Decode reads a JSON snapshot. Input problems inside the records are left
// to graphmodel.Load; only malformed JSON fails here.
func Decode(r io.Reader) (graphmodel.Snapshot, error) {
	var s graphmodel.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return graphmodel.Snapshot{}, err
	}
	return s, nil
}

// Encode writes s as JSON.
func Encode(w io.Writer, s graphmodel.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// IsCompressed reports whether name carries the snappy extension.
func IsCompressed(name string) bool {
	return strings.HasSuffix(name, CompressedExt)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (f FileSource) Kind() string   { return "file" }
func (f FileSource) String() string { return f.Path }

// Fetch opens the file, decompressing snappy-framed .sz files.
func (f FileSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return maybeDecompress(f.Path, file), nil
}

// ReaderSource reads from an already open stream such as stdin.
type ReaderSource struct {
	Name       string
	R          io.Reader
	Compressed bool
}

func (r ReaderSource) Kind() string   { return "reader" }
func (r ReaderSource) String() string { return r.Name }

func (r ReaderSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc := io.NopCloser(r.R)
	if r.Compressed {
		return snappyReadCloser{snappy.NewReader(rc), rc}, nil
	}
	return rc, nil
}

type snappyReadCloser struct {
	*snappy.Reader
	c io.Closer
}

func (s snappyReadCloser) Close() error { return s.c.Close() }

func maybeDecompress(name string, rc io.ReadCloser) io.ReadCloser {
	if !IsCompressed(name) {
		return rc
	}
	return snappyReadCloser{snappy.NewReader(rc), rc}
}

// Open resolves a location: "-" is stdin, "s3://bucket/key" an S3 object,
// anything else a file path.
func Open(ctx context.Context, location string, s3cfg S3Config) (Source, error) {
	switch {
	case location == "":
		return nil, ErrInvalidURI
	case location == "-":
		return ReaderSource{Name: "stdin", R: os.Stdin}, nil
	case strings.HasPrefix(location, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidURI, location)
		}
		s3cfg.Bucket, s3cfg.Key = bucket, key
		return NewS3Source(ctx, s3cfg)
	default:
		return FileSource{Path: location}, nil
	}
}

// CreateFile creates path for writing, snappy-framing the output when the
// name ends in .sz. Closing the writer flushes the compressor.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return f, nil
	}
	return &snappyWriteCloser{Writer: snappy.NewBufferedWriter(f), f: f}, nil
}

type snappyWriteCloser struct {
	*snappy.Writer
	f *os.File
}

func (s *snappyWriteCloser) Close() error {
	err := s.Writer.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
