package snapshot

import (
	"context"
	"testing"
	"time"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "valid", opts: Options{URL: "http://localhost:8050/"}},
		{name: "empty url", opts: Options{}, wantErr: true},
		{name: "relative url", opts: Options{URL: "/dashboard"}, wantErr: true},
		{name: "unsupported scheme", opts: Options{URL: "file:///tmp/page.html"}, wantErr: true},
		{name: "negative width", opts: Options{URL: "http://localhost:8050/", Width: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{URL: "https://example.test/"}
	if err := opts.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if opts.Width != defaultWidth || opts.Height != defaultHeight {
		t.Fatalf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.Timeout != defaultTimeout {
		t.Fatalf("timeout = %v", opts.Timeout)
	}
	if opts.Region != "Any" {
		t.Fatalf("region = %q, want Any", opts.Region)
	}
}

func TestTasksSelectRegionOnlyWhenFiltered(t *testing.T) {
	var image []byte
	if got := len(tasks(Options{URL: "http://localhost/", Region: "Any"}, &image)); got != 3 {
		t.Fatalf("default tasks = %d, want 3", got)
	}
	if got := len(tasks(Options{URL: "http://localhost/", Region: "Queens"}, &image)); got != 6 {
		t.Fatalf("filtered tasks = %d, want 6", got)
	}
}

func TestCaptureRejectsInvalidOptions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Capture(ctx, Options{URL: "not a url"}); err == nil {
		t.Fatalf("expected validation error")
	}
}
