package entity

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

// Submission is one form POST.
type Submission struct {
	Endpoint  string
	Values    map[string]string
	RequestID string
}

// Response is the raw HTTP answer to a Submission.
type Response struct {
	StatusCode int
	Body       []byte
}

// Submitter performs exactly one request per call; it never retries.
// err is only set when no HTTP response was received.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*Response, error)
}

// RESTSubmitter posts form-encoded submissions to a backend.
type RESTSubmitter struct {
	baseURL string
	client  *rest.Client
}

var _ Submitter = (*RESTSubmitter)(nil)

// NewHTTPClient returns an http.Client keeping the session & CSRF cookies between requests.
func NewHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil) // never fails without options
	return &http.Client{Jar: jar}
}

func NewRESTSubmitter(baseURL string, httpClient *http.Client) *RESTSubmitter {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &RESTSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &rest.Client{HTTPClient: httpClient},
	}
}

func (s *RESTSubmitter) Submit(ctx context.Context, sub Submission) (*Response, error) {
	form := make(url.Values, len(sub.Values))
	for k, v := range sub.Values {
		form.Set(k, v)
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: s.baseURL + sub.Endpoint,
		Headers: map[string]string{
			"Content-Type":     "application/x-www-form-urlencoded",
			"Accept":           "application/json",
			"X-Requested-With": "XMLHttpRequest",
		},
		Body: []byte(form.Encode()),
	}
	if sub.RequestID != "" {
		req.Headers["X-Request-ID"] = sub.RequestID
	}

	res, err := SendRequest(ctx, s.client, req)
	if err != nil {
		return nil, errors.Wrapf(err, "posting to %s", sub.Endpoint)
	}
	return &Response{StatusCode: res.StatusCode, Body: []byte(res.Body)}, nil
}

// SendRequest sends req through client, bound to ctx.
func SendRequest(ctx context.Context, client *rest.Client, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	httpRes, err := client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(httpRes)
}
