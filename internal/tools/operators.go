package tools

import (
	"cmp"
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
	"github.com/stacklok/pyxis-mcp-server/internal/versions"
)

func searchOperatorsTool() mcp.Tool {
	return mcp.NewTool(
		SearchOperatorsToolName,
		mcp.WithDescription(
			"Search for operator bundles in Red Hat Pyxis. Results are grouped by package, newest version first.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Search query for operator names/bundles"),
			mcp.DefaultString(""),
		),
		mcp.WithString("package",
			mcp.Description("Filter by package name"),
			mcp.DefaultString(""),
		),
		maxResultsParam(defaultSearchResults, "Maximum number of results to return (1-100)"),
	)
}

func getOperatorDetailsTool() mcp.Tool {
	return mcp.NewTool(
		GetOperatorDetailsToolName,
		mcp.WithDescription("Get detailed information about a specific operator bundle."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("operator_id",
			mcp.Required(),
			mcp.Description("The unique ID of the operator bundle"),
		),
	)
}

// sortOperators orders bundles by package name and, within a package, newest
// version first.
func sortOperators(bundles []pyxis.OperatorBundle) {
	slices.SortStableFunc(bundles, func(a, b pyxis.OperatorBundle) int {
		return cmp.Or(
			cmp.Compare(a.PackageName, b.PackageName),
			versions.Compare(b.Version, a.Version),
		)
	})
}

func (t *Toolset) searchOperators(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := maxResults(req, defaultSearchResults)

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, SearchOperatorsToolName, err), nil
	}
	page, err := client.SearchOperators(ctx,
		pyxis.WithQuery[pyxis.SearchOperatorsOptions](stringArg(req, "query")),
		pyxis.WithPackage(stringArg(req, "package")),
		pyxis.WithPageSize[pyxis.SearchOperatorsOptions](limit),
	)
	if err != nil {
		return errorResult(ctx, SearchOperatorsToolName, err), nil
	}

	operators := slices.Clone(page.Data[:min(len(page.Data), limit)])
	if len(operators) == 0 {
		return mcp.NewToolResultText(noResults("operators")), nil
	}
	sortOperators(operators)
	return mcp.NewToolResultText(formatOperatorSearch(page.Total, operators)), nil
}

func (t *Toolset) getOperatorDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req, "operator_id")
	if err != nil {
		return errorResult(ctx, GetOperatorDetailsToolName, err), nil
	}

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, GetOperatorDetailsToolName, err), nil
	}
	operator, err := client.GetOperator(ctx, id)
	if err != nil {
		return errorResult(ctx, GetOperatorDetailsToolName, err), nil
	}

	return mcp.NewToolResultText(formatOperatorDetails(operator)), nil
}
