package pyxis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testAPIKey = "test-api-key"

// newTestServer starts a Pyxis stand-in mounted under /api/containers/v1/ and
// returns a client pointing at it together with a request counter.
func newTestServer(t *testing.T, handler http.HandlerFunc) (Client, *atomic.Int32) {
	t.Helper()

	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(
		WithAPIKey(testAPIKey),
		WithBaseURL(server.URL+"/api/containers/v1"),
		WithTimeout(5*time.Second),
	)
	require.NoError(t, err)

	return c, &count
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "   "} {
		c, err := NewClient(WithAPIKey(key))
		require.Error(t, err)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrAuth)
		assert.Contains(t, err.Error(), "PYXIS_API_KEY")
	}
}

func TestNewClient_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  ClientOption
	}{
		{name: "relative base URL", opt: WithBaseURL("catalog.redhat.com/api")},
		{name: "unsupported scheme", opt: WithBaseURL("ftp://catalog.redhat.com/api")},
		{name: "zero timeout", opt: WithTimeout(0)},
		{name: "negative rate", opt: WithRequestsPerSecond(-1, 1)},
		{name: "nil http client", opt: WithHTTPClient(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(WithAPIKey(testAPIKey), tt.opt)
			require.Error(t, err)
		})
	}
}

func TestClient_SendsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	c, count := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, `{"_id": "abc"}`)
	})

	_, err := c.GetImage(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, int32(1), count.Load())
	assert.Equal(t, testAPIKey, got.Get(APIKeyHeader))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.True(t, strings.HasPrefix(got.Get("User-Agent"), "pyxis-mcp-server/"))
}

func TestClient_SearchRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		call       func(Client) error
		wantPath   string
		wantParams map[string]string
		absent     []string
	}{
		{
			name: "images with all filters",
			call: func(c Client) error {
				_, err := c.SearchImages(context.Background(),
					WithQuery[SearchImagesOptions]("ubi9"),
					WithArchitecture("amd64"),
					WithRegistry[SearchImagesOptions]("registry.access.redhat.com"),
					WithCertified(true),
					WithPageSize[SearchImagesOptions](5),
				)
				return err
			},
			wantPath: "/api/containers/v1/images",
			wantParams: map[string]string{
				"filter":       "repositories.repository=match=ubi9",
				"architecture": "amd64",
				"registry":     "registry.access.redhat.com",
				"certified":    "true",
				"page":         "0",
				"page_size":    "5",
			},
		},
		{
			name: "images without filters",
			call: func(c Client) error {
				_, err := c.SearchImages(context.Background())
				return err
			},
			wantPath:   "/api/containers/v1/images",
			wantParams: map[string]string{"page": "0", "page_size": "20"},
			absent:     []string{"filter", "architecture", "registry", "certified"},
		},
		{
			name: "certification projects",
			call: func(c Client) error {
				_, err := c.SearchCertificationProjects(context.Background(),
					WithQuery[SearchProjectsOptions]("nginx"),
					WithStatus("approved"),
					WithPage[SearchProjectsOptions](2),
				)
				return err
			},
			wantPath: "/api/containers/v1/projects/certification",
			wantParams: map[string]string{
				"filter":               "name=match=nginx",
				"certification_status": "approved",
				"page":                 "2",
			},
		},
		{
			name: "operators",
			call: func(c Client) error {
				_, err := c.SearchOperators(context.Background(),
					WithQuery[SearchOperatorsOptions]("postgres"),
					WithPackage("crunchy-postgres-operator"),
				)
				return err
			},
			wantPath: "/api/containers/v1/operators/bundles",
			wantParams: map[string]string{
				"filter":  "bundle_path=match=postgres",
				"package": "crunchy-postgres-operator",
			},
		},
		{
			name: "repositories",
			call: func(c Client) error {
				_, err := c.SearchRepositories(context.Background(),
					WithQuery[SearchRepositoriesOptions]("ubi8/ubi"),
					WithRegistry[SearchRepositoriesOptions]("registry.redhat.io"),
				)
				return err
			},
			wantPath: "/api/containers/v1/repositories",
			wantParams: map[string]string{
				"filter":   "repository=match=ubi8/ubi",
				"registry": "registry.redhat.io",
			},
		},
		{
			name: "vulnerabilities",
			call: func(c Client) error {
				_, err := c.GetImageVulnerabilities(context.Background(), "img-1",
					WithPageSize[VulnerabilityOptions](50),
				)
				return err
			},
			wantPath:   "/api/containers/v1/images/id/img-1/vulnerabilities",
			wantParams: map[string]string{"page_size": "50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath string
			var gotQuery map[string][]string
			c, count := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				writeJSON(w, http.StatusOK, `{"data": [], "page": 0, "page_size": 20, "total": 0}`)
			})

			require.NoError(t, tt.call(c))
			assert.Equal(t, int32(1), count.Load())
			assert.Equal(t, tt.wantPath, gotPath)
			for k, v := range tt.wantParams {
				assert.Equal(t, []string{v}, gotQuery[k], "param %s", k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, gotQuery, k)
			}
		})
	}
}

func TestClient_PageSizeCapped(t *testing.T) {
	t.Parallel()

	var pageSize string
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		pageSize = r.URL.Query().Get("page_size")
		writeJSON(w, http.StatusOK, `{"data": []}`)
	})

	page, err := c.SearchRepositories(context.Background(), WithPageSize[SearchRepositoriesOptions](500))
	require.NoError(t, err)
	assert.Equal(t, "100", pageSize)
	assert.NotNil(t, page.Data)
	assert.Equal(t, MaxPageSize, page.PageSize)
}

func TestClient_InvalidPageSize(t *testing.T) {
	t.Parallel()

	c, count := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": []}`)
	})

	_, err := c.SearchImages(context.Background(), WithPageSize[SearchImagesOptions](0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = c.SearchOperators(context.Background(), WithPage[SearchOperatorsOptions](-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, int32(0), count.Load(), "no request should be sent")
}

func TestClient_GetImage(t *testing.T) {
	t.Parallel()

	var gotPath string
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{
			"_id": "57ea8d0d9c624c035f96f4b0",
			"architecture": "amd64",
			"certified": true,
			"docker_image_digest": "sha256:abcd",
			"image_id": "sha256:1234",
			"creation_date": "2024-03-01T10:00:00Z",
			"sum_layer_size_bytes": 52428800,
			"brew": {"build": "ubi9-container-9.3-1", "nvr": "ubi9-container-9.3-1", "id": 42},
			"content_sets": [{"name": "rhel-9-for-x86_64-baseos-rpms"}],
			"repositories": [{
				"registry": "registry.access.redhat.com",
				"repository": "ubi9/ubi",
				"published": true,
				"tags": ["latest", {"name": "9.3", "added_date": "2024-03-01T10:00:00Z"}]
			}]
		}`)
	})

	img, err := c.GetImage(context.Background(), "57ea8d0d9c624c035f96f4b0")
	require.NoError(t, err)

	assert.Equal(t, "/api/containers/v1/images/id/57ea8d0d9c624c035f96f4b0", gotPath)
	assert.Equal(t, "57ea8d0d9c624c035f96f4b0", img.ID)
	assert.Equal(t, "amd64", img.Architecture)
	assert.True(t, img.Certified)
	assert.Equal(t, "sha256:abcd", img.DockerImageDigest)
	assert.Equal(t, int64(52428800), img.SumLayerSizeBytes)
	require.NotNil(t, img.CreationDate)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), img.CreationDate.UTC())
	require.NotNil(t, img.Brew)
	assert.Equal(t, int64(42), img.Brew.ID)
	require.Len(t, img.Repositories, 1)
	repo := img.Repositories[0]
	assert.Equal(t, "ubi9/ubi", repo.Repository)
	require.NotNil(t, repo.Published)
	assert.True(t, *repo.Published)
	require.Len(t, repo.Tags, 2)
	assert.Equal(t, "latest", repo.Tags[0].Name)
	assert.Equal(t, "9.3", repo.Tags[1].Name)
	assert.NotNil(t, repo.Tags[1].AddedDate)
}

func TestClient_SearchImages_NaiveDates(t *testing.T) {
	t.Parallel()

	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"data": [
				{"_id": "naive", "creation_date": "2024-03-01T10:00:00"},
				{"_id": "zoned", "creation_date": "2024-03-02T10:00:00+00:00", "last_update_date": ""}
			],
			"page": 0, "page_size": 10, "total": 2
		}`)
	})

	page, err := c.SearchImages(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), page.Data[0].CreationDate.UTC())
	assert.Equal(t, "zoned", page.Data[1].ID)
	assert.False(t, page.Data[1].LastUpdateDate.IsSet())
}

func TestClient_GetRepository_DisplayData(t *testing.T) {
	t.Parallel()

	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"_id": "r",
			"registry": "registry.access.redhat.com",
			"repository": "ubi9",
			"published": true,
			"display_data": {
				"name": "Red Hat Universal Base Image 9",
				"short_description": "Universal Base Image 9",
				"long_description": "The Universal Base Image is designed and engineered to be the base layer."
			}
		}`)
	})

	repo, err := c.GetRepository(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, "Red Hat Universal Base Image 9", repo.DisplayData.Name)
	assert.Equal(t, "Universal Base Image 9", repo.DisplayData.ShortDescription)
	assert.Equal(t, "Universal Base Image 9", repo.DisplayData.Description())
}

func TestClient_WithoutTracerLeavesParentSpanOpen(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"_id": "img-1"}`)
	})

	ctx, parent := tp.Tracer("test").Start(context.Background(), "mcp.tool/get_image_details")
	_, err := c.GetImage(ctx, "img-1")
	require.NoError(t, err)

	assert.True(t, parent.IsRecording())
	assert.NotContains(t, spanNames(exporter), "mcp.tool/get_image_details")

	parent.End()
	names := spanNames(exporter)
	assert.Contains(t, names, "mcp.tool/get_image_details")
	assert.NotContains(t, names, "pyxis.GetImage")
}

func spanNames(exporter *tracetest.InMemoryExporter) []string {
	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	return names
}

func TestClient_DetailEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		call     func(Client) (string, error)
		wantPath string
	}{
		{
			name: "project",
			call: func(c Client) (string, error) {
				p, err := c.GetCertificationProject(context.Background(), "p1")
				if err != nil {
					return "", err
				}
				return p.ID, nil
			},
			wantPath: "/api/containers/v1/projects/certification/id/p1",
		},
		{
			name: "operator",
			call: func(c Client) (string, error) {
				o, err := c.GetOperator(context.Background(), "p1")
				if err != nil {
					return "", err
				}
				return o.ID, nil
			},
			wantPath: "/api/containers/v1/operators/bundles/id/p1",
		},
		{
			name: "repository",
			call: func(c Client) (string, error) {
				r, err := c.GetRepository(context.Background(), "p1")
				if err != nil {
					return "", err
				}
				return r.ID, nil
			},
			wantPath: "/api/containers/v1/repositories/id/p1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath string
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				writeJSON(w, http.StatusOK, `{"_id": "p1"}`)
			})

			id, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, "p1", id)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestClient_EscapesID(t *testing.T) {
	t.Parallel()

	var rawPath string
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, `{"_id": "a b?c"}`)
	})

	_, err := c.GetImage(context.Background(), "a b?c")
	require.NoError(t, err)
	assert.Equal(t, "/api/containers/v1/images/id/a%20b%3Fc", rawPath)
}

func TestClient_InvalidID(t *testing.T) {
	t.Parallel()

	c, count := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	for _, id := range []string{"", "  ", "../images", "a/b", ".."} {
		_, err := c.GetImage(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = c.GetImageVulnerabilities(context.Background(), id)
		assert.ErrorIs(t, err, ErrValidation)
	}

	assert.Equal(t, int32(0), count.Load(), "no request should be sent")
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		header       map[string]string
		wantKind     error
		wantContains []string
	}{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"detail": "invalid api key"}`,
			wantKind:     ErrAuth,
			wantContains: []string{"check your API key", "401"},
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			wantKind: ErrAuth,
		},
		{
			name:         "not found",
			status:       http.StatusNotFound,
			body:         `{"detail": "Image not found"}`,
			wantKind:     ErrNotFound,
			wantContains: []string{"Image not found"},
		},
		{
			name:         "rate limited",
			status:       http.StatusTooManyRequests,
			header:       map[string]string{"Retry-After": "30"},
			wantKind:     ErrRateLimited,
			wantContains: []string{"retry after 30s"},
		},
		{
			name:         "server error with message",
			status:       http.StatusInternalServerError,
			body:         `{"message": "backend unavailable"}`,
			wantKind:     ErrAPI,
			wantContains: []string{"500", "backend unavailable"},
		},
		{
			name:         "bad gateway with text body",
			status:       http.StatusBadGateway,
			body:         "upstream timed out\n",
			wantKind:     ErrAPI,
			wantContains: []string{"upstream timed out"},
		},
		{
			name:         "undecodable body",
			status:       http.StatusOK,
			body:         `<html>maintenance</html>`,
			wantKind:     ErrAPI,
			wantContains: []string{"failed to parse response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, count := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.GetImage(context.Background(), "abc")
			require.Error(t, err)
			assert.Equal(t, int32(1), count.Load())
			assert.ErrorIs(t, err, tt.wantKind)
			for _, s := range tt.wantContains {
				assert.Contains(t, err.Error(), s)
			}

			var pyxisErr *Error
			require.True(t, errors.As(err, &pyxisErr))
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, pyxisErr.StatusCode)
			}
		})
	}
}

func TestClient_RateLimitedIsDistinctFromAPIError(t *testing.T) {
	t.Parallel()

	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{}`)
	})

	_, err := c.SearchImages(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrAPI)
}

func TestClient_ConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c, err := NewClient(WithAPIKey(testAPIKey), WithBaseURL(baseURL), WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = c.SearchImages(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "failed to connect to Pyxis at images")
	assert.NotContains(t, err.Error(), "timed out")
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(WithAPIKey(testAPIKey), WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.GetImage(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "request to images/id/a timed out after 50ms")
}

func TestClient_ContextDeadline(t *testing.T) {
	t.Parallel()

	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, `{}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetImage(ctx, "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "request to images/id/abc timed out after")
}
