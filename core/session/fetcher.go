package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

// Fetcher performs the read-only GETs of a page: its bootstrap document and the summary widgets.
type Fetcher struct {
	baseURL string
	client  *rest.Client
}

// NewFetcher returns a Fetcher. Share httpClient with the submitter to keep the session cookies.
func NewFetcher(baseURL string, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = entity.NewHTTPClient()
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &rest.Client{HTTPClient: httpClient},
	}
}

// Get returns the body of a successful JSON GET. Any other outcome is a *core.TransportError.
func (f *Fetcher) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	req := rest.Request{
		Method:      rest.Get,
		BaseURL:     f.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json", "X-Requested-With": "XMLHttpRequest"},
		QueryParams: query,
	}
	res, err := entity.SendRequest(ctx, f.client, req)
	if err != nil {
		return nil, core.NewTransportError(path, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		tErr := core.NewTransportError(path, errors.Errorf("unexpected status %d", res.StatusCode))
		tErr.StatusCode = res.StatusCode
		tErr.Body = res.Body
		return nil, tErr
	}
	return []byte(res.Body), nil
}
