// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes apogee build tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ForestKatsch/apogee-ssg/internal/models"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

const defaultSearchLimit = 20

// Builder is the build service as seen by the MCP tools.
type Builder interface {
	Build(ctx context.Context) (*site.Report, error)
	ListPages(ctx context.Context, c site.Criteria) ([]models.PageSummary, error)
	GetPage(ctx context.Context, path string) (*models.PageDetail, error)
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
}

// Server wraps the MCP server with apogee tools.
type Server struct {
	mcp *server.MCPServer
	svc Builder
}

// New creates a new MCP server with all apogee tools registered.
func New(svc Builder, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Apogee",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("build_site",
		mcp.WithDescription("Run a full build of the site and return the build report. "+
			"Page listings and lookups reflect the last successful build."),
	), s.buildSite)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the listable pages of the last build, newest first. "+
			"Drafts and static files are never listed."),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; a page matches if it has any")),
		mcp.WithString("categories", mcp.Description("Comma-separated categories; a page matches if it has any")),
		mcp.WithBoolean("all_tags", mcp.Description("Require every listed tag instead of any")),
		mcp.WithString("exclude_tags", mcp.Description("Comma-separated tags to drop")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of pages")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Get one page of the last build with its metadata, build state and plain text."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Output path of the page (e.g. /posts/hello)")),
	), s.getPage)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through built page titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("get_page_format",
		mcp.WithDescription("Returns the content file format. "+
			"Call this before writing content files to ensure correct structure."),
	), s.getPageFormat)

	// Resource: page format contract.
	s.mcp.AddResource(
		mcp.NewResource("apogee://page-format", "Page Format",
			mcp.WithResourceDescription("Content file format with TOML metadata."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) buildSite(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Build(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := site.Criteria{Limit: req.GetInt("limit", 0)}
	include := &site.Filter{
		Tags:       splitList(req.GetString("tags", "")),
		Categories: splitList(req.GetString("categories", "")),
		AllTags:    req.GetBool("all_tags", false),
	}
	if len(include.Tags) > 0 || len(include.Categories) > 0 {
		c.Include = include
	}
	if tags := splitList(req.GetString("exclude_tags", "")); len(tags) > 0 {
		c.Exclude = &site.Filter{Tags: tags}
	}

	pages, err := s.svc.ListPages(ctx, c)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(pages) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return jsonResult(pages)
}

func (s *Server) getPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	detail, err := s.svc.GetPage(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no results for %q", query)), nil
	}
	return jsonResult(hits)
}

func (s *Server) getPageFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormatContract), nil
}

func (s *Server) readPageFormatResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}
