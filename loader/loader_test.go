package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-nyc-airbnb/config"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const datasetURL = "http://example.test/AB_NYC_2019.csv"

const listingsCSV = `id,host_id,neighbourhood_group,neighbourhood,latitude,longitude,room_type,price,availability_365
1,1,Manhattan,Harlem,0,0,Entire home,100,200
2,2,Brooklyn,Bushwick,1,1,Private room,600,100
3,1,Manhattan,Harlem,0.1,0.1,Shared room,50,300
`

func newTestLoader(t *testing.T, location string, transport http.RoundTripper) (*Loader, *Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DatasetURL = location

	metrics := NewMetrics(prometheus.NewRegistry())
	opts := []Option{WithMetrics(metrics)}
	if transport != nil {
		opts = append(opts, WithTransport(transport))
	}
	l, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	return l, metrics
}

func TestLoadRemoteCSV(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", datasetURL, httpmock.NewStringResponder(200, listingsCSV))

	l, metrics := newTestLoader(t, datasetURL, transport)
	table, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", table.Len())
	}
	if got := table.Listings[1]; got.HostID != 2 || got.Price != 600 || got.Region != "Brooklyn" {
		t.Fatalf("unexpected listing %+v", got)
	}
	if calls := transport.GetTotalCallCount(); calls != 1 {
		t.Fatalf("requests = %d, want exactly 1", calls)
	}
	if got := testutil.ToFloat64(metrics.Rows); got != 3 {
		t.Fatalf("rows gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues("http", "ok")); got != 1 {
		t.Fatalf("ok loads = %v, want 1", got)
	}
}

func TestLoadRemoteStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusInternalServerError, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", datasetURL, httpmock.NewStringResponder(tt.status, ""))

			l, metrics := newTestLoader(t, datasetURL, transport)
			_, err := l.Load(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrDataUnavailable) {
				t.Fatalf("error %v should match ErrDataUnavailable", err)
			}
			var unavailable *DataUnavailableError
			if !errors.As(err, &unavailable) || unavailable.Source != datasetURL {
				t.Fatalf("expected DataUnavailableError for %s, got %v", datasetURL, err)
			}
			if got := errorTypeLabel(err); got != tt.expected {
				t.Fatalf("category = %q, want %q", got, tt.expected)
			}
			if got := testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues(tt.expected)); got != 1 {
				t.Fatalf("error counter = %v, want 1", got)
			}
			if calls := transport.GetTotalCallCount(); calls != 1 {
				t.Fatalf("requests = %d, failed fetches must not retry", calls)
			}
		})
	}
}

func TestLoadRemoteMalformedCSV(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", datasetURL, httpmock.NewStringResponder(200, "host_id,price\n1,2\n"))

	l, _ := newTestLoader(t, datasetURL, transport)
	_, err := l.Load(context.Background())
	var parseErr ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("parse failures are DataUnavailable too, got %v", err)
	}
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(listingsCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	for _, location := range []string{path, "file://" + path} {
		l, _ := newTestLoader(t, location, nil)
		table, err := l.Load(context.Background())
		if err != nil {
			t.Fatalf("load %s: %v", location, err)
		}
		if table.Len() != 3 {
			t.Fatalf("rows = %d, want 3", table.Len())
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	l, _ := newTestLoader(t, filepath.Join(t.TempDir(), "missing.csv"), nil)
	_, err := l.Load(context.Background())
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", datasetURL, httpmock.NewStringResponder(200, listingsCSV))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l, _ := newTestLoader(t, datasetURL, transport)
	if _, err := l.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls := transport.GetTotalCallCount(); calls != 0 {
		t.Fatalf("requests = %d, want 0", calls)
	}
}

func TestLoadAbortsSlowDownload(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
		want error
	}{
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 200*time.Millisecond)
			},
			want: context.DeadlineExceeded,
		},
		{
			name: "cancel",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(200*time.Millisecond, cancel)
				return ctx, cancel
			},
			want: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			l, _ := newTestLoader(t, server.URL+"/listings.csv", nil)
			start := time.Now()
			_, err := l.Load(ctx)
			elapsed := time.Since(start)

			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
			if elapsed > 2*time.Second {
				t.Fatalf("load took %v after the context ended", elapsed)
			}
		})
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	stmts := []string{
		`CREATE TABLE listings (
			id INTEGER PRIMARY KEY,
			host_id INTEGER NOT NULL,
			price REAL,
			neighbourhood_group TEXT NOT NULL,
			neighbourhood TEXT NOT NULL,
			longitude REAL NOT NULL,
			latitude REAL NOT NULL,
			room_type TEXT NOT NULL,
			availability_365 INTEGER NOT NULL
		)`,
		`INSERT INTO listings (host_id, price, neighbourhood_group, neighbourhood, longitude, latitude, room_type, availability_365) VALUES
			(1, 100, 'Manhattan', 'Harlem', 0, 0, 'Entire home', 200),
			(2, 600, 'Brooklyn', 'Bushwick', 1, 1, 'Private room', 100),
			(1, 50.5, 'Manhattan', 'Harlem', 0.1, 0.1, 'Shared room', 300)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	l, metrics := newTestLoader(t, "sqlite://"+path, nil)
	table, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("rows = %d, want 3", table.Len())
	}
	last := table.Listings[2]
	if last.Price != 50.5 || last.RoomType != "Shared room" || last.Availability != 300 || last.Latitude != 0.1 {
		t.Fatalf("unexpected listing %+v", last)
	}
	if got := testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues("sqlite", "ok")); got != 1 {
		t.Fatalf("sqlite loads = %v, want 1", got)
	}
}

func TestLoadSQLiteRejectsBadTableName(t *testing.T) {
	l, _ := newTestLoader(t, "sqlite://"+filepath.Join(t.TempDir(), "x.db"), nil)
	l.cfg.DatasetTable = "listings; DROP TABLE listings"
	_, err := l.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid table name") {
		t.Fatalf("expected invalid table name error, got %v", err)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		raw      string
		kind     SourceKind
		location string
		wantErr  bool
	}{
		{raw: "https://example.com/a.csv", kind: SourceHTTP, location: "https://example.com/a.csv"},
		{raw: "data/listings.csv", kind: SourceFile, location: "data/listings.csv"},
		{raw: "file:///tmp/listings.csv", kind: SourceFile, location: "/tmp/listings.csv"},
		{raw: "sqlite:///var/lib/listings.db", kind: SourceSQLite, location: "/var/lib/listings.db"},
		{raw: "postgres://u:p@db:5432/nyc", kind: SourcePostgres, location: "postgres://u:p@db:5432/nyc"},
		{raw: "ftp://example.com/a.csv", wantErr: true},
		{raw: "sqlite://", wantErr: true},
		{raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			src, err := ParseSource(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if src.Kind != tt.kind || src.Location != tt.location {
				t.Fatalf("source = %+v, want %s %s", src, tt.kind, tt.location)
			}
		})
	}
}

func TestSourceRedactsPassword(t *testing.T) {
	src, err := ParseSource("postgres://admin:secret@db:5432/nyc?sslmode=disable")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Contains(src.Redacted(), "secret") {
		t.Fatalf("password leaked: %s", src.Redacted())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: nil, statusCode: http.StatusBadGateway, expected: "other"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorTypeLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}
