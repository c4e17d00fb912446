package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
)

func searchImagesTool() mcp.Tool {
	return mcp.NewTool(
		SearchImagesToolName,
		mcp.WithDescription(
			"Search for container images in Red Hat Pyxis. A fully qualified repository "+
				"such as registry.access.redhat.com/ubi9/ubi is split into registry and repository filters.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Description("Search query for image names/repositories"),
			mcp.DefaultString(""),
		),
		mcp.WithString("architecture",
			mcp.Description("Filter by architecture (e.g., 'amd64', 'arm64')"),
			mcp.DefaultString(""),
		),
		mcp.WithString("registry",
			mcp.Description("Filter by registry (e.g., 'registry.redhat.io')"),
			mcp.DefaultString(""),
		),
		mcp.WithBoolean("certified",
			mcp.Description("Only show certified images"),
			mcp.DefaultBool(false),
		),
		maxResultsParam(defaultSearchResults, "Maximum number of results to return (1-100)"),
	)
}

func getImageDetailsTool() mcp.Tool {
	return mcp.NewTool(
		GetImageDetailsToolName,
		mcp.WithDescription("Get detailed information about a specific container image."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("image_id",
			mcp.Required(),
			mcp.Description("The unique ID of the container image"),
		),
	)
}

func getImageVulnerabilitiesTool() mcp.Tool {
	return mcp.NewTool(
		GetImageVulnerabilitiesToolName,
		mcp.WithDescription("Get security vulnerabilities for a specific container image, grouped by severity."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("image_id",
			mcp.Required(),
			mcp.Description("The unique ID of the container image"),
		),
		maxResultsParam(defaultVulnerabilityResults, "Maximum number of vulnerabilities to return (1-100)"),
	)
}

func maxResultsParam(def int, description string) mcp.ToolOption {
	return mcp.WithNumber("max_results",
		mcp.Description(description),
		mcp.DefaultNumber(float64(def)),
		mcp.Min(1),
		mcp.Max(pyxis.MaxPageSize),
	)
}

func (t *Toolset) searchImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, registry := splitRepositoryQuery(stringArg(req, "query"), stringArg(req, "registry"))
	limit := maxResults(req, defaultSearchResults)

	opts := []pyxis.Option[pyxis.SearchImagesOptions]{
		pyxis.WithQuery[pyxis.SearchImagesOptions](query),
		pyxis.WithRegistry[pyxis.SearchImagesOptions](registry),
		pyxis.WithArchitecture(stringArg(req, "architecture")),
		pyxis.WithPageSize[pyxis.SearchImagesOptions](limit),
	}
	// certified=false means no filter
	if req.GetBool("certified", false) {
		opts = append(opts, pyxis.WithCertified(true))
	}

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, SearchImagesToolName, err), nil
	}
	page, err := client.SearchImages(ctx, opts...)
	if err != nil {
		return errorResult(ctx, SearchImagesToolName, err), nil
	}

	images := page.Data[:min(len(page.Data), limit)]
	if len(images) == 0 {
		return mcp.NewToolResultText(noResults("images")), nil
	}
	return mcp.NewToolResultText(formatImageSearch(page.Total, images)), nil
}

func (t *Toolset) getImageDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req, "image_id")
	if err != nil {
		return errorResult(ctx, GetImageDetailsToolName, err), nil
	}

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, GetImageDetailsToolName, err), nil
	}
	image, err := client.GetImage(ctx, id)
	if err != nil {
		return errorResult(ctx, GetImageDetailsToolName, err), nil
	}

	return mcp.NewToolResultText(formatImageDetails(image)), nil
}

func (t *Toolset) getImageVulnerabilities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredID(req, "image_id")
	if err != nil {
		return errorResult(ctx, GetImageVulnerabilitiesToolName, err), nil
	}
	limit := maxResults(req, defaultVulnerabilityResults)

	client, err := t.pyxisClient()
	if err != nil {
		return errorResult(ctx, GetImageVulnerabilitiesToolName, err), nil
	}
	page, err := client.GetImageVulnerabilities(ctx, id,
		pyxis.WithPageSize[pyxis.VulnerabilityOptions](limit))
	if err != nil {
		return errorResult(ctx, GetImageVulnerabilitiesToolName, err), nil
	}

	vulns := page.Data[:min(len(page.Data), limit)]
	if len(vulns) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No vulnerabilities found for image %s", id)), nil
	}
	return mcp.NewToolResultText(formatVulnerabilities(id, page.Total, limit, vulns)), nil
}
