package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

func TestSplitRepositoryQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		query        string
		registry     string
		wantQuery    string
		wantRegistry string
	}{
		{name: "empty"},
		{name: "plain name", query: "ubi9", wantQuery: "ubi9"},
		{name: "namespaced name", query: "ubi9/ubi", wantQuery: "ubi9/ubi"},
		{
			name:         "qualified reference",
			query:        "registry.access.redhat.com/ubi9/ubi-minimal",
			wantQuery:    "ubi9/ubi-minimal",
			wantRegistry: "registry.access.redhat.com",
		},
		{
			name:         "registry with port",
			query:        "localhost:5000/team/app",
			wantQuery:    "team/app",
			wantRegistry: "localhost:5000",
		},
		{
			name:         "explicit registry wins",
			query:        "registry.access.redhat.com/ubi9/ubi",
			registry:     "quay.io",
			wantQuery:    "registry.access.redhat.com/ubi9/ubi",
			wantRegistry: "quay.io",
		},
		{
			name:      "invalid reference is left alone",
			query:     "registry.example.com/UPPER/Case",
			wantQuery: "registry.example.com/UPPER/Case",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, registry := splitRepositoryQuery(tt.query, tt.registry)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantRegistry, registry)
		})
	}
}

func TestRequiredID(t *testing.T) {
	t.Parallel()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"image_id": "  abc  ", "blank": " ", "number": 42}

	id, err := requiredID(req, "image_id")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	for _, key := range []string{"blank", "missing", "number"} {
		_, err = requiredID(req, key)
		require.Error(t, err, key)
		assert.ErrorIs(t, err, pyxis.ErrValidation)
		assert.Contains(t, err.Error(), key+" is required")
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, clamp(-3, 1, 100))
	assert.Equal(t, 1, clamp(0, 1, 100))
	assert.Equal(t, 42, clamp(42, 1, 100))
	assert.Equal(t, 100, clamp(101, 1, 100))
}
