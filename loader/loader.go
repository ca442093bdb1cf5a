// Package loader materialises the listings table from its configured source.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aluiziolira/go-nyc-airbnb/config"
	"github.com/aluiziolira/go-nyc-airbnb/models"
	"github.com/aluiziolira/go-nyc-airbnb/parser"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aluiziolira/go-nyc-airbnb/loader"

// SourceKind identifies how a dataset location is read.
type SourceKind string

const (
	SourceHTTP     SourceKind = "http"
	SourceFile     SourceKind = "file"
	SourceSQLite   SourceKind = "sqlite"
	SourcePostgres SourceKind = "postgres"
)

// Source is a parsed dataset location.
type Source struct {
	Kind     SourceKind
	Location string
}

// ParseSource classifies a dataset location. Locations without a known
// scheme are treated as local CSV paths.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, fmt.Errorf("dataset location is empty")
	}

	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		return Source{Kind: SourceFile, Location: raw}, nil
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return Source{Kind: SourceHTTP, Location: raw}, nil
	case "file":
		return Source{Kind: SourceFile, Location: rest}, nil
	case "sqlite":
		if rest == "" {
			return Source{}, fmt.Errorf("sqlite location needs a path")
		}
		return Source{Kind: SourceSQLite, Location: rest}, nil
	case "postgres", "postgresql":
		return Source{Kind: SourcePostgres, Location: raw}, nil
	default:
		return Source{}, fmt.Errorf("unsupported dataset scheme %q", scheme)
	}
}

// Redacted returns the location with any password masked.
func (s Source) Redacted() string {
	if s.Kind != SourcePostgres {
		return s.Location
	}
	u, err := url.Parse(s.Location)
	if err != nil {
		return string(s.Kind)
	}
	return u.Redacted()
}

// Loader reads the listings table once per Load call.
type Loader struct {
	cfg       *config.Config
	transport http.RoundTripper
	tracer    trace.Tracer
	Metrics   *Metrics
}

// Option customises a Loader.
type Option func(*Loader)

// WithMetrics records loads on m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) {
		l.Metrics = m
	}
}

// WithTransport replaces the HTTP transport used for remote sources.
func WithTransport(rt http.RoundTripper) Option {
	return func(l *Loader) {
		l.transport = rt
	}
}

// New builds a loader for cfg.DatasetURL.
func New(cfg *config.Config, opts ...Option) (*Loader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	l := &Loader{
		cfg: cfg,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load reads and decodes the dataset. Every failure is a *DataUnavailableError.
func (l *Loader) Load(ctx context.Context) (*models.Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	src, err := ParseSource(l.cfg.DatasetURL)
	if err != nil {
		return nil, &DataUnavailableError{Source: l.cfg.DatasetURL, Err: err}
	}

	ctx, span := l.tracer.Start(ctx, "loader.Load", trace.WithAttributes(
		attribute.String("dataset.source_kind", string(src.Kind)),
		attribute.String("dataset.location", src.Redacted()),
	))
	defer span.End()

	start := time.Now()
	table, err := l.read(ctx, src)
	if err != nil {
		category := errorTypeLabel(err)
		l.Metrics.IncError(src.Kind, category)
		span.RecordError(err)
		span.SetStatus(codes.Error, category)
		slog.Error("dataset load failed",
			slog.String("source", src.Redacted()),
			slog.String("category", category),
			slog.Any("error", err),
		)
		return nil, &DataUnavailableError{Source: src.Redacted(), Err: err}
	}

	elapsed := time.Since(start)
	l.Metrics.ObserveLoad(src.Kind, elapsed, table.Len())
	span.SetAttributes(attribute.Int("dataset.rows", table.Len()))
	slog.Info("dataset loaded",
		slog.String("source", src.Redacted()),
		slog.Int("rows", table.Len()),
		slog.Duration("elapsed", elapsed),
	)
	return table, nil
}

func (l *Loader) read(ctx context.Context, src Source) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyError(err, 0)
	}

	switch src.Kind {
	case SourceHTTP:
		body, err := l.fetch(ctx, src.Location)
		if err != nil {
			return nil, err
		}
		table, err := parser.ParseCSV(bytes.NewReader(body))
		if err != nil {
			return nil, ErrParse{Err: err}
		}
		return table, nil
	case SourceFile:
		return readFile(src.Location)
	case SourceSQLite:
		return l.readSQL(ctx, "sqlite", src.Location)
	case SourcePostgres:
		return l.readSQL(ctx, "postgres", src.Location)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

func readFile(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound{Err: err}
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	table, err := parser.ParseCSV(f)
	if err != nil {
		return nil, ErrParse{Err: err}
	}
	return table, nil
}
