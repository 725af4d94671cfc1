// Package snapshot exports the graph store as a YAML document to a local
// file or an S3 object.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/store"
)

const Version = 1

var ErrDestination = errors.New("invalid snapshot destination")

// Source is the part of the graph store a snapshot reads.
type Source interface {
	List(ctx context.Context) ([]note.Note, error)
	Edges(ctx context.Context) ([]store.Edge, error)
	StackEntries(ctx context.Context) ([]store.StackEntry, error)
}

type Document struct {
	Version int                 `yaml:"version"`
	Created time.Time           `yaml:"created"`
	Notes   []Note              `yaml:"notes"`
	Links   []Link              `yaml:"links"`
	Stacks  map[string][]string `yaml:"stacks,omitempty"`
}

type Note struct {
	Name string `yaml:"name"`
	File string `yaml:"file,omitempty"`
}

type Link struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Build reads the whole store. Stack members are listed bottom first.
func Build(ctx context.Context, src Source, now time.Time) (*Document, error) {
	notes, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := src.Edges(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := src.StackEntries(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version: Version,
		Created: now.UTC(),
		Notes:   make([]Note, 0, len(notes)),
		Links:   make([]Link, 0, len(edges)),
	}
	for _, n := range notes {
		doc.Notes = append(doc.Notes, Note{Name: n.Name, File: n.File})
	}
	for _, e := range edges {
		doc.Links = append(doc.Links, Link{From: e.Src, To: e.Dst})
	}
	if len(entries) > 0 {
		doc.Stacks = make(map[string][]string)
	}
	for _, e := range entries {
		doc.Stacks[e.Stack] = append(doc.Stacks[e.Stack], e.Note)
	}
	return doc, nil
}

func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return enc.Close()
}

// Destination is either a local path or an S3 object.
type Destination struct {
	Path   string
	Bucket string
	Key    string
}

func (d Destination) IsS3() bool {
	return d.Key != ""
}

func (d Destination) String() string {
	if d.IsS3() {
		return "s3://" + d.Bucket + "/" + d.Key
	}
	return d.Path
}

// ParseDestination accepts a file path or s3://bucket/key. An empty bucket
// falls back to defaultBucket.
func ParseDestination(raw, defaultBucket string) (Destination, error) {
	if raw == "" {
		return Destination{}, fmt.Errorf("%w: empty", ErrDestination)
	}
	if !strings.HasPrefix(raw, "s3://") {
		return Destination{Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %v", ErrDestination, err)
	}
	bucket := u.Host
	if bucket == "" {
		bucket = defaultBucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return Destination{}, fmt.Errorf("%w: %q needs a bucket and a key", ErrDestination, raw)
	}
	return Destination{Bucket: bucket, Key: key}, nil
}

// Uploader is satisfied by manager.Uploader.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Exporter struct {
	Source Source
	Config config.SnapshotConfig
	Logger *slog.Logger
	// NewUploader builds the S3 uploader of an upload.
	NewUploader func(ctx context.Context, cfg config.SnapshotConfig) (Uploader, error)
	Now         func() time.Time
}

func NewExporter(src Source, cfg config.SnapshotConfig, logger *slog.Logger) *Exporter {
	return &Exporter{
		Source:      src,
		Config:      cfg,
		Logger:      logger,
		NewUploader: NewS3Uploader,
		Now:         time.Now,
	}
}

// Export writes a snapshot to dest and returns the parsed destination.
func (e *Exporter) Export(ctx context.Context, dest string) (Destination, error) {
	d, err := ParseDestination(dest, e.Config.Bucket)
	if err != nil {
		return d, err
	}

	doc, err := Build(ctx, e.Source, e.Now())
	if err != nil {
		return d, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return d, err
	}

	if d.IsS3() {
		err = e.upload(ctx, d, buf.Bytes())
	} else {
		err = writeFile(d.Path, buf.Bytes())
	}
	if err != nil {
		return d, err
	}

	if e.Logger != nil {
		e.Logger.Info("snapshot exported",
			slog.String("dest", d.String()),
			slog.Int("notes", len(doc.Notes)),
			slog.Int("links", len(doc.Links)),
		)
	}
	return d, nil
}

func (e *Exporter) upload(ctx context.Context, d Destination, body []byte) error {
	up, err := e.NewUploader(ctx, e.Config)
	if err != nil {
		return fmt.Errorf("snapshot: s3 client: %w", err)
	}
	_, err = up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(d.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/yaml"),
	})
	if err != nil {
		return fmt.Errorf("snapshot: upload %s: %w", d, err)
	}
	return nil
}

// NewS3Uploader loads the default AWS chain. Static keys and a custom
// endpoint from the config take precedence.
func NewS3Uploader(ctx context.Context, cfg config.SnapshotConfig) (Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return manager.NewUploader(client), nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
