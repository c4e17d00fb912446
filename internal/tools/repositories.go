package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

func searchRepositoriesTool() mcp.Tool {
	return mcp.NewTool(
		SearchRepositoriesToolName,
		mcp.WithDescription(
			"Search for repositories in Red Hat Pyxis. A fully qualified repository "+
				"such as registry.access.redhat.com/ubi9/ubi is split into registry and repository filters.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Search query for repository names"),
			mcp.DefaultString(""),
		),
		mcp.WithString("registry",
			mcp.Description("Filter by registry"),
			mcp.DefaultString(""),
		),
		maxResultsParam(defaultSearchResults, "Maximum number of results to return (1-100)"),
	)
}

func getRepositoryDetailsTool() mcp.Tool {
	return mcp.NewTool(
		GetRepositoryDetailsToolName,
		mcp.WithDescription("Get detailed information about a specific repository, including its tags."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("repository_id",
			mcp.Required(),
			mcp.Description("The unique ID of the repository"),
		),
	)
}

func (t *Toolset) searchRepositories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, registry := splitRepositoryQuery(stringArg(req, "query"), stringArg(req, "registry"))
	limit := maxResults(req, defaultSearchResults)

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, SearchRepositoriesToolName, err), nil
	}
	page, err := client.SearchRepositories(ctx,
		pyxis.WithQuery[pyxis.SearchRepositoriesOptions](query),
		pyxis.WithRegistry[pyxis.SearchRepositoriesOptions](registry),
		pyxis.WithPageSize[pyxis.SearchRepositoriesOptions](limit),
	)
	if err != nil {
		return errorResult(ctx, SearchRepositoriesToolName, err), nil
	}

	repos := page.Data[:min(len(page.Data), limit)]
	if len(repos) == 0 {
		return mcp.NewToolResultText(noResults("repositories")), nil
	}
	return mcp.NewToolResultText(formatRepositorySearch(page.Total, repos)), nil
}

func (t *Toolset) getRepositoryDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req, "repository_id")
	if err != nil {
		return errorResult(ctx, GetRepositoryDetailsToolName, err), nil
	}

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, GetRepositoryDetailsToolName, err), nil
	}
	repo, err := client.GetRepository(ctx, id)
	if err != nil {
		return errorResult(ctx, GetRepositoryDetailsToolName, err), nil
	}

	return mcp.NewToolResultText(formatRepositoryDetails(repo)), nil
}
