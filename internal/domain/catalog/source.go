package catalog

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
)

// Source fetches the remote product list. It returns the valid products, the
// number of malformed records dropped at the boundary, and an error when the
// list could not be retrieved or parsed at all.
type Source interface {
	Fetch(ctx context.Context) (products []Product, dropped int, err error)
}

var _ Source = (*HTTPSource)(nil)

// HTTPSource fetches the catalog from a configured HTTP endpoint serving a
// JSON array of product records. No auth, no pagination; the caller's context
// bounds the request.
type HTTPSource struct {
	client *http.Client
	url    string
}

// NewHTTPSource creates an HTTPSource for the given endpoint URL. A nil
// client falls back to http.DefaultClient.
func NewHTTPSource(client *http.Client, url string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, url: url}
}

// Fetch issues the GET and decodes the response body.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Product, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, errors.Errorf("catalog endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "read body")
	}
	return DecodeCatalog(body)
}
