package api

import (
	"strings"

	"github.com/hazyhaar/icdterms/pkg/kit"
	"github.com/hazyhaar/icdterms/pkg/termdb"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the term-lookup MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *termdb.Registry) {
	registerLookupTerm(srv, reg)
	registerLookupBatch(srv, reg)
	registerExpandTerm(srv, reg)
	registerListTables(srv, reg)
}

func registerLookupTerm(srv *server.MCPServer, reg *termdb.Registry) {
	tool := mcp.NewTool("lookup_term",
		mcp.WithDescription("Look up a clinical term in the loaded ICD code tables and return matching codes."),
		mcp.WithString("term", mcp.Required(), mcp.Description("The clinical term to look up")),
		mcp.WithString("catalogs", mcp.Description("Comma-separated catalog filter (e.g. icd10cm)")),
		mcp.WithString("versions", mcp.Description("Comma-separated version filter (e.g. 2026)")),
		mcp.WithString("tables", mcp.Description("Comma-separated table ID filter (e.g. icd10cm-2026)")),
	)

	kit.RegisterMCPTool(srv, tool, lookupTermEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		term, _ := args["term"].(string)
		return &kit.MCPDecodeResult{Request: &lookupTermReq{Term: term, Opts: mcpOpts(args)}}, nil
	})
}

func registerLookupBatch(srv *server.MCPServer, reg *termdb.Registry) {
	tool := mcp.NewTool("lookup_batch",
		mcp.WithDescription("Look up multiple clinical terms (up to 100) in the loaded ICD code tables."),
		mcp.WithString("terms", mcp.Required(), mcp.Description("Comma-separated list of terms to look up")),
		mcp.WithString("catalogs", mcp.Description("Comma-separated catalog filter")),
		mcp.WithString("versions", mcp.Description("Comma-separated version filter")),
		mcp.WithString("tables", mcp.Description("Comma-separated table ID filter")),
	)

	kit.RegisterMCPTool(srv, tool, lookupBatchEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		termsStr, _ := args["terms"].(string)
		terms := strings.Split(termsStr, ",")
		for i := range terms {
			terms[i] = strings.TrimSpace(terms[i])
		}
		return &kit.MCPDecodeResult{Request: &lookupBatchReq{Terms: terms, Opts: mcpOpts(args)}}, nil
	})
}

func registerExpandTerm(srv *server.MCPServer, reg *termdb.Registry) {
	tool := mcp.NewTool("expand_term",
		mcp.WithDescription("Look up a clinical term, retrying near-miss phrasings (abbreviations, reordered qualifiers) when the exact term has no match."),
		mcp.WithString("term", mcp.Required(), mcp.Description("The clinical term to look up")),
		mcp.WithString("catalogs", mcp.Description("Comma-separated catalog filter")),
		mcp.WithString("versions", mcp.Description("Comma-separated version filter")),
		mcp.WithString("tables", mcp.Description("Comma-separated table ID filter")),
		mcp.WithNumber("max_variants", mcp.Description("Cap on retried phrasings (default 25)")),
	)

	kit.RegisterMCPTool(srv, tool, expandTermEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		term, _ := args["term"].(string)
		maxVariants := 0
		if v, ok := args["max_variants"].(float64); ok {
			maxVariants = int(v)
		}
		return &kit.MCPDecodeResult{Request: &expandTermReq{
			Term:        term,
			Opts:        mcpOpts(args),
			MaxVariants: maxVariants,
		}}, nil
	})
}

func registerListTables(srv *server.MCPServer, reg *termdb.Registry) {
	tool := mcp.NewTool("list_tables",
		mcp.WithDescription("List all loaded code tables with metadata (catalog, version, term count, source)."),
	)

	kit.RegisterMCPTool(srv, tool, listTablesEndpoint(reg), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func mcpOpts(args map[string]any) *termdb.LookupOptions {
	opts := &termdb.LookupOptions{}
	if v, _ := args["catalogs"].(string); v != "" {
		opts.Catalogs = strings.Split(v, ",")
	}
	if v, _ := args["versions"].(string); v != "" {
		opts.Versions = strings.Split(v, ",")
	}
	if v, _ := args["tables"].(string); v != "" {
		opts.Tables = strings.Split(v, ",")
	}
	return opts
}
