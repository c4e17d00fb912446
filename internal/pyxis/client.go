// Package pyxis provides a client for the Red Hat Pyxis container catalog REST API
package pyxis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/pyxis-mcp-server/internal/httpclient"
	"github.com/stacklok/pyxis-mcp-server/internal/otel"
	"github.com/stacklok/pyxis-mcp-server/internal/versions"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go

const (
	// DefaultBaseURL is the public Pyxis v1 endpoint
	DefaultBaseURL = "https://catalog.redhat.com/api/containers/v1/"

	// TracerName is the name of the tracer used for client spans
	TracerName = "github.com/stacklok/pyxis-mcp-server/pyxis"

	// APIKeyHeader carries the Pyxis API key
	APIKeyHeader = "X-API-KEY"
)

// Client is the interface to the Pyxis REST API. Every method issues exactly
// one GET request.
type Client interface {
	// SearchImages lists container images matching the given filters
	SearchImages(ctx context.Context, opts ...Option[SearchImagesOptions]) (*Page[ContainerImage], error)
	// GetImage returns a single container image by its Pyxis id
	GetImage(ctx context.Context, id string) (*ContainerImage, error)
	// GetImageVulnerabilities lists the vulnerabilities reported for an image
	GetImageVulnerabilities(
		ctx context.Context,
		id string,
		opts ...Option[VulnerabilityOptions],
	) (*Page[Vulnerability], error)
	// SearchCertificationProjects lists certification projects matching the given filters
	SearchCertificationProjects(
		ctx context.Context,
		opts ...Option[SearchProjectsOptions],
	) (*Page[CertificationProject], error)
	// GetCertificationProject returns a single certification project by its Pyxis id
	GetCertificationProject(ctx context.Context, id string) (*CertificationProject, error)
	// SearchOperators lists operator bundles matching the given filters
	SearchOperators(ctx context.Context, opts ...Option[SearchOperatorsOptions]) (*Page[OperatorBundle], error)
	// GetOperator returns a single operator bundle by its Pyxis id
	GetOperator(ctx context.Context, id string) (*OperatorBundle, error)
	// SearchRepositories lists repositories matching the given filters
	SearchRepositories(ctx context.Context, opts ...Option[SearchRepositoriesOptions]) (*Page[Repository], error)
	// GetRepository returns a single repository by its Pyxis id
	GetRepository(ctx context.Context, id string) (*Repository, error)
}

// clientOptions holds configuration options for the client
type clientOptions struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	userAgent  string
	rps        float64
	burst      int
	httpClient httpclient.Client
	tracer     trace.Tracer
}

// ClientOption is a functional option for configuring the client
type ClientOption func(*clientOptions) error

// WithAPIKey sets the API key sent in the X-API-KEY header
func WithAPIKey(key string) ClientOption {
	return func(o *clientOptions) error {
		o.apiKey = strings.TrimSpace(key)
		return nil
	}
}

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", baseURL)
		}
		o.baseURL = baseURL
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be greater than zero, got %s", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithRequestsPerSecond throttles outgoing requests. Zero disables throttling.
func WithRequestsPerSecond(rps float64, burst int) ClientOption {
	return func(o *clientOptions) error {
		if rps < 0 {
			return fmt.Errorf("requests per second must not be negative, got %v", rps)
		}
		o.rps = rps
		o.burst = burst
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client. Timeout, user agent and
// rate limit options are ignored when this is set.
func WithHTTPClient(c httpclient.Client) ClientOption {
	return func(o *clientOptions) error {
		if c == nil {
			return fmt.Errorf("http client is required")
		}
		o.httpClient = c
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the client.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(o *clientOptions) error {
		o.tracer = tracer
		return nil
	}
}

type client struct {
	http    httpclient.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	tracer  trace.Tracer
}

var _ Client = (*client)(nil)

// NewClient creates a Pyxis client. It fails with ErrAuth when no API key is
// configured.
func NewClient(opts ...ClientOption) (Client, error) {
	o := &clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   httpclient.DefaultTimeout,
		userAgent: versions.UserAgent(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.apiKey == "" {
		return nil, newError(ErrAuth, "no API key provided, set the PYXIS_API_KEY environment variable")
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpOpts := []httpclient.Option{httpclient.WithUserAgent(o.userAgent)}
		if o.rps > 0 {
			httpOpts = append(httpOpts, httpclient.WithRateLimit(o.rps, o.burst))
		}
		httpClient = httpclient.NewDefaultClient(o.timeout, httpOpts...)
	}

	return &client{
		http:    httpClient,
		baseURL: strings.TrimRight(o.baseURL, "/") + "/",
		apiKey:  o.apiKey,
		timeout: o.timeout,
		tracer:  o.tracer,
	}, nil
}

// SearchImages lists container images
func (c *client) SearchImages(
	ctx context.Context,
	opts ...Option[SearchImagesOptions],
) (*Page[ContainerImage], error) {
	o, err := ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if o.Query != "" {
		params.Set("filter", "repositories.repository=match="+o.Query)
	}
	if o.Architecture != "" {
		params.Set("architecture", o.Architecture)
	}
	if o.Registry != "" {
		params.Set("registry", o.Registry)
	}
	if o.Certified != nil {
		params.Set("certified", strconv.FormatBool(*o.Certified))
	}

	return list[ContainerImage](ctx, c, "SearchImages", "images", &o.ListOptions, params, o.Query)
}

// GetImage returns an image by id
func (c *client) GetImage(ctx context.Context, id string) (*ContainerImage, error) {
	return fetch[ContainerImage](ctx, c, "GetImage", "images/id/", "image", id)
}

// GetImageVulnerabilities lists the vulnerabilities of an image
func (c *client) GetImageVulnerabilities(
	ctx context.Context,
	id string,
	opts ...Option[VulnerabilityOptions],
) (*Page[Vulnerability], error) {
	escaped, err := escapeID("image", id)
	if err != nil {
		return nil, err
	}
	o, err := ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	endpoint := "images/id/" + escaped + "/vulnerabilities"
	return list[Vulnerability](ctx, c, "GetImageVulnerabilities", endpoint, &o.ListOptions, url.Values{}, "")
}

// SearchCertificationProjects lists certification projects
func (c *client) SearchCertificationProjects(
	ctx context.Context,
	opts ...Option[SearchProjectsOptions],
) (*Page[CertificationProject], error) {
	o, err := ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if o.Query != "" {
		params.Set("filter", "name=match="+o.Query)
	}
	if o.Status != "" {
		params.Set("certification_status", o.Status)
	}

	return list[CertificationProject](ctx, c, "SearchCertificationProjects",
		"projects/certification", &o.ListOptions, params, o.Query)
}

// GetCertificationProject returns a certification project by id
func (c *client) GetCertificationProject(ctx context.Context, id string) (*CertificationProject, error) {
	return fetch[CertificationProject](ctx, c, "GetCertificationProject",
		"projects/certification/id/", "project", id)
}

// SearchOperators lists operator bundles
func (c *client) SearchOperators(
	ctx context.Context,
	opts ...Option[SearchOperatorsOptions],
) (*Page[OperatorBundle], error) {
	o, err := ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if o.Query != "" {
		params.Set("filter", "bundle_path=match="+o.Query)
	}
	if o.Package != "" {
		params.Set("package", o.Package)
	}

	return list[OperatorBundle](ctx, c, "SearchOperators", "operators/bundles", &o.ListOptions, params, o.Query)
}

// GetOperator returns an operator bundle by id
func (c *client) GetOperator(ctx context.Context, id string) (*OperatorBundle, error) {
	return fetch[OperatorBundle](ctx, c, "GetOperator", "operators/bundles/id/", "operator", id)
}

// SearchRepositories lists repositories
func (c *client) SearchRepositories(
	ctx context.Context,
	opts ...Option[SearchRepositoriesOptions],
) (*Page[Repository], error) {
	o, err := ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if o.Query != "" {
		params.Set("filter", "repository=match="+o.Query)
	}
	if o.Registry != "" {
		params.Set("registry", o.Registry)
	}

	return list[Repository](ctx, c, "SearchRepositories", "repositories", &o.ListOptions, params, o.Query)
}

// GetRepository returns a repository by id
func (c *client) GetRepository(ctx context.Context, id string) (*Repository, error) {
	return fetch[Repository](ctx, c, "GetRepository", "repositories/id/", "repository", id)
}

func list[T any](
	ctx context.Context,
	c *client,
	op, endpoint string,
	lo *ListOptions,
	params url.Values,
	query string,
) (*Page[T], error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "pyxis."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			otel.AttrEndpoint.String(endpoint),
			otel.AttrPage.Int(lo.Page),
			otel.AttrPageSize.Int(lo.pageSize()),
		),
	)
	defer span.End()
	if query != "" {
		span.SetAttributes(otel.AttrQuery.String(query))
	}

	params.Set("page", strconv.Itoa(lo.Page))
	params.Set("page_size", strconv.Itoa(lo.pageSize()))

	var page Page[T]
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	if page.PageSize == 0 {
		page.PageSize = lo.pageSize()
	}

	span.SetAttributes(
		otel.AttrResultCount.Int(len(page.Data)),
		otel.AttrResultTotal.Int(page.Total),
	)
	return &page, nil
}

func fetch[T any](ctx context.Context, c *client, op, prefix, kind, id string) (*T, error) {
	escaped, err := escapeID(kind, id)
	if err != nil {
		return nil, err
	}

	endpoint := prefix + escaped
	ctx, span := otel.StartSpan(ctx, c.tracer, "pyxis."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			otel.AttrEndpoint.String(strings.TrimSuffix(prefix, "/")),
			otel.AttrResourceID.String(id),
		),
	)
	defer span.End()

	var out T
	if err := c.get(ctx, endpoint, nil, &out); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

func (c *client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	slog.DebugContext(ctx, "Pyxis request",
		"endpoint", endpoint,
		"params", params.Encode())

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline).Round(time.Millisecond))
	}

	body, err := c.http.Get(ctx, target, httpclient.WithHeader(APIKeyHeader, c.apiKey))
	if err != nil {
		classified := classify(err, endpoint, timeout)
		slog.DebugContext(ctx, "Pyxis request failed",
			"endpoint", endpoint,
			"error", classified)
		return classified
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Kind:    ErrAPI,
			Message: fmt.Sprintf("failed to parse response from %s: %v", endpoint, err),
			Err:     err,
		}
	}
	return nil
}

// escapeID validates a resource id and escapes it for use as a path segment
func escapeID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", newError(ErrValidation, "%s id is required", kind)
	case strings.Contains(id, "/"), id == ".", id == "..":
		return "", newError(ErrValidation, "%s id %q is not a valid identifier", kind, id)
	}
	return url.PathEscape(id), nil
}
