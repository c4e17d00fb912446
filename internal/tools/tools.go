// Package tools declares the Pyxis MCP tool set and adapts tool calls to the
// Pyxis API client.
package tools

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

// Tool names as exposed to MCP clients.
const (
	SearchImagesToolName                   = "search_images"
	GetImageDetailsToolName                = "get_image_details"
	GetImageVulnerabilitiesToolName        = "get_image_vulnerabilities"
	SearchCertificationProjectsToolName    = "search_certification_projects"
	GetCertificationProjectDetailsToolName = "get_certification_project_details"
	SearchOperatorsToolName                = "search_operators"
	GetOperatorDetailsToolName             = "get_operator_details"
	SearchRepositoriesToolName             = "search_repositories"
	GetRepositoryDetailsToolName           = "get_repository_details"
)

// ClientFactory creates the Pyxis client used by the tool handlers.
type ClientFactory func() (pyxis.Client, error)

// Interface is implemented by anything that can register tools on an MCP server.
type Interface interface {
	Init(*server.MCPServer)
}

// Toolset holds the Pyxis tools. The client is created on the first tool call
// and reused afterwards; a failed creation is retried on the next call.
type Toolset struct {
	factory ClientFactory

	mu     sync.Mutex
	client pyxis.Client
}

var _ Interface = &Toolset{}

// New creates a Toolset backed by the given client factory.
func New(factory ClientFactory) *Toolset {
	return &Toolset{factory: factory}
}

// Tools returns every tool together with its handler.
func (t *Toolset) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: searchImagesTool(), Handler: t.searchImages},
		{Tool: getImageDetailsTool(), Handler: t.getImageDetails},
		{Tool: getImageVulnerabilitiesTool(), Handler: t.getImageVulnerabilities},
		{Tool: searchCertificationProjectsTool(), Handler: t.searchCertificationProjects},
		{Tool: getCertificationProjectDetailsTool(), Handler: t.getCertificationProjectDetails},
		{Tool: searchOperatorsTool(), Handler: t.searchOperators},
		{Tool: getOperatorDetailsTool(), Handler: t.getOperatorDetails},
		{Tool: searchRepositoriesTool(), Handler: t.searchRepositories},
		{Tool: getRepositoryDetailsTool(), Handler: t.getRepositoryDetails},
	}
}

// Init registers the tool set on the MCP server.
func (t *Toolset) Init(mcpServer *server.MCPServer) {
	mcpServer.AddTools(t.Tools()...)
}

// pyxisClient returns the shared client, creating it if needed. Any factory
// failure is reported as an authentication failure.
func (t *Toolset) pyxisClient() (pyxis.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}
	if t.factory == nil {
		return nil, &pyxis.Error{Kind: pyxis.ErrAuth, Message: "no Pyxis client configured"}
	}

	c, err := t.factory()
	if err != nil {
		if errors.Is(err, pyxis.ErrAuth) {
			return nil, err
		}
		return nil, &pyxis.Error{
			Kind:    pyxis.ErrAuth,
			Message: fmt.Sprintf("could not create Pyxis client: %v", err),
			Err:     err,
		}
	}
	t.client = c
	return c, nil
}
