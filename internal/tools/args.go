package tools

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

const (
	defaultSearchResults        = 20
	defaultVulnerabilityResults = 50
)

// stringArg returns the trimmed string argument, or "" when it is absent.
func stringArg(req mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(req.GetString(key, ""))
}

// requiredID returns the trimmed identifier argument or a validation error.
func requiredID(req mcp.CallToolRequest, key string) (string, error) {
	id := stringArg(req, key)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", pyxis.ErrValidation, key)
	}
	return id, nil
}

// maxResults reads max_results and clamps it to [1, pyxis.MaxPageSize].
func maxResults(req mcp.CallToolRequest, def int) int {
	return clamp(req.GetInt("max_results", def), 1, pyxis.MaxPageSize)
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}

// splitRepositoryQuery splits a fully qualified repository reference such as
// "registry.access.redhat.com/ubi9/ubi" into a repository query and a registry
// filter. Anything else, or a call with an explicit registry, is returned
// unchanged.
func splitRepositoryQuery(query, registry string) (string, string) {
	if registry != "" {
		return query, registry
	}

	host, _, found := strings.Cut(query, "/")
	if !found || !looksLikeRegistry(host) {
		return query, registry
	}

	repo, err := name.NewRepository(query, name.StrictValidation)
	if err != nil {
		return query, registry
	}
	return repo.RepositoryStr(), repo.RegistryStr()
}

// looksLikeRegistry applies the same rule as the Docker reference grammar: the
// first path component is a host when it has a dot, a port, or is localhost.
func looksLikeRegistry(host string) bool {
	return strings.ContainsAny(host, ".:") || host == "localhost"
}
