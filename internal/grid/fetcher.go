package grid

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/valyala/fasthttp"
)

const (
	StatusPath  = "/status"
	GraphQLPath = "/graphql"

	DefaultTimeout = 10 * time.Second

	userAgent = "selenium-grid-exporter"
)

// Fetcher retrieves raw status documents from the grid.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	URL() string
}

// Source pairs a Fetcher with the parser understanding its payload.
type Source interface {
	Fetcher
	Parse(raw []byte) (*Topology, error)
}

// HTTPFetcher issues one request per Fetch call. It never retries; retry
// policy belongs to the caller.
type HTTPFetcher struct {
	client  *fasthttp.Client
	method  string
	url     string
	body    []byte
	timeout time.Duration
}

// NewStatusSource polls GET <baseURL>/status.
func NewStatusSource(baseURL string, timeout time.Duration) *StatusSource {
	return &StatusSource{HTTPFetcher: newHTTPFetcher(fasthttp.MethodGet, baseURL+StatusPath, nil, timeout)}
}

// NewGraphQLSource polls POST <baseURL>/graphql with GraphQLQuery.
func NewGraphQLSource(baseURL string, timeout time.Duration) *GraphQLSource {
	body, _ := json.Marshal(map[string]string{"query": GraphQLQuery})
	return &GraphQLSource{HTTPFetcher: newHTTPFetcher(fasthttp.MethodPost, baseURL+GraphQLPath, body, timeout)}
}

func newHTTPFetcher(method, url string, body []byte, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:            userAgent,
			MaxConnsPerHost: 4,
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
		},
		method:  method,
		url:     url,
		body:    body,
		timeout: timeout,
	}
}

// URL returns the full endpoint the fetcher calls.
func (f *HTTPFetcher) URL() string {
	return f.url
}

// Fetch performs the request and returns a copy of the response body. ctx is
// checked before the call; an in-flight request runs to its own timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	failure := FetchFailure{Method: f.method, URL: f.url}

	if err := ctx.Err(); err != nil {
		return nil, fetchError(failure, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.url)
	req.Header.SetMethod(f.method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if f.body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(f.body)
	}

	if err := f.client.DoTimeout(req, resp, f.timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
			err = errors.New().Wrap(errors.ErrTimeout, err)
		}
		return nil, fetchError(failure, err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		failure.StatusCode = status
		return nil, fetchError(failure, nil)
	}

	return append([]byte(nil), resp.Body()...), nil
}

// StatusSource reads the grid's /status endpoint.
type StatusSource struct {
	*HTTPFetcher
}

func (*StatusSource) Parse(raw []byte) (*Topology, error) {
	return ParseStatus(raw)
}

// GraphQLSource reads the grid's /graphql endpoint.
type GraphQLSource struct {
	*HTTPFetcher
}

func (*GraphQLSource) Parse(raw []byte) (*Topology, error) {
	return ParseGraphQL(raw)
}
