package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

func searchCertificationProjectsTool() mcp.Tool {
	return mcp.NewTool(
		SearchCertificationProjectsToolName,
		mcp.WithDescription("Search for certification projects in Red Hat Pyxis."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Search query for project names"),
			mcp.DefaultString(""),
		),
		mcp.WithString("status",
			mcp.Description("Filter by certification status (e.g., 'In Progress', 'Published')"),
			mcp.DefaultString(""),
		),
		maxResultsParam(defaultSearchResults, "Maximum number of results to return (1-100)"),
	)
}

func getCertificationProjectDetailsTool() mcp.Tool {
	return mcp.NewTool(
		GetCertificationProjectDetailsToolName,
		mcp.WithDescription("Get detailed information about a specific certification project."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The unique ID of the certification project"),
		),
	)
}

func (t *Toolset) searchCertificationProjects(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	limit := maxResults(req, defaultSearchResults)

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, SearchCertificationProjectsToolName, err), nil
	}
	page, err := client.SearchCertificationProjects(ctx,
		pyxis.WithQuery[pyxis.SearchProjectsOptions](stringArg(req, "query")),
		pyxis.WithStatus(stringArg(req, "status")),
		pyxis.WithPageSize[pyxis.SearchProjectsOptions](limit),
	)
	if err != nil {
		return errorResult(ctx, SearchCertificationProjectsToolName, err), nil
	}

	projects := page.Data[:min(len(page.Data), limit)]
	if len(projects) == 0 {
		return mcp.NewToolResultText(noResults("certification projects")), nil
	}
	return mcp.NewToolResultText(formatProjectSearch(page.Total, projects)), nil
}

func (t *Toolset) getCertificationProjectDetails(
	ctx context.Context,
	req mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	id, err := requiredID(req, "project_id")
	if err != nil {
		return errorResult(ctx, GetCertificationProjectDetailsToolName, err), nil
	}

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, GetCertificationProjectDetailsToolName, err), nil
	}
	project, err := client.GetCertificationProject(ctx, id)
	if err != nil {
		return errorResult(ctx, GetCertificationProjectDetailsToolName, err), nil
	}

	return mcp.NewToolResultText(formatProjectDetails(project)), nil
}
