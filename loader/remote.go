package loader

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// contextTransport binds outgoing requests to ctx. Colly's Visit takes no
// context, so this is what lets cancellation abort an in-flight download.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// newCollector builds a collector for one fetch. Clones share their HTTP
// backend, so a per-call transport needs a fresh collector.
func (l *Loader) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(l.cfg.UserAgent),
		colly.MaxBodySize(0),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(l.cfg.Timeout)
	c.WithTransport(contextTransport{ctx: ctx, base: l.transport})
	return c
}

// fetch downloads rawURL once. Responses with a status of 203 or above are
// errors; there is no retry. Cancelling ctx aborts the download.
func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	c := l.newCollector(ctx)

	var (
		body   []byte
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		slog.Debug("fetching dataset", slog.String("url", r.URL.String()))
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			slog.Debug("dataset response",
				slog.Int("status", r.StatusCode),
				slog.Int("bytes", len(r.Body)),
				slog.Duration("elapsed", time.Since(start)),
			)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		if status >= http.StatusBadRequest {
			slog.Error("non-200 response",
				slog.Int("status", status),
				slog.String("url", rawURL),
			)
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, classifyError(err, status)
	}
	if err := ctx.Err(); err != nil {
		return nil, classifyError(err, 0)
	}
	return body, nil
}
