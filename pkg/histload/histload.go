// Package histload loads an analysis input bundle (profile, product index,
// day records) from a local JSON file or an HTTP(S) endpoint. Network
// fetches retry with exponential backoff and jitter; the engine itself
// performs no I/O, so this is the host-side boundary.
package histload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/mealwise/insight/pkg/record"
)

// Bundle is the on-disk/on-wire input format.
type Bundle struct {
	Profile  record.Profile       `json:"profile"`
	Products record.ProductIndex  `json:"products"`
	History  []record.DailyRecord `json:"history"`
}

// Loader fetches bundles.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// New builds a Loader. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Load reads a bundle from source: an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, source string) (*Bundle, error) {
	var data []byte
	var err error
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bundle from %s: %w", source, err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decoding bundle from %s: %w", source, err)
	}
	l.logger.Debug("bundle loaded",
		"source", source,
		"days", len(bundle.History),
		"products", len(bundle.Products),
	)
	return &bundle, nil
}

// fetch GETs a URL with retry. Client errors are unrecoverable; server
// errors and transport failures back off and retry.
func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := l.client.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := resp.Body.Close(); cerr != nil {
					l.logger.Warn("closing response body", "error", cerr)
				}
			}()

			switch {
			case resp.StatusCode >= 500:
				return fmt.Errorf("server error %d from %s", resp.StatusCode, url)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Warn("bundle fetch retry", "attempt", n+1, "url", url, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
