package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/icdterms/pkg/kit"
	"github.com/hazyhaar/icdterms/pkg/termdb"
)

// Shared request/response types used by both HTTP and MCP transports.

type batchResponse struct {
	Results []*termdb.LookupResult `json:"results"`
}

type tablesResponse struct {
	Tables []termdb.TableInfo `json:"tables"`
}

type lookupTermReq struct {
	Term string
	Opts *termdb.LookupOptions
}

type lookupBatchReq struct {
	Terms []string
	Opts  *termdb.LookupOptions
}

type expandTermReq struct {
	Term        string
	Opts        *termdb.LookupOptions
	MaxVariants int
}

// Endpoints returns the core kit.Endpoints backed by the registry.

func lookupTermEndpoint(reg *termdb.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lookupTermReq)
		return reg.Lookup(req.Term, req.Opts), nil
	}
}

func lookupBatchEndpoint(reg *termdb.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lookupBatchReq)
		if len(req.Terms) == 0 {
			return nil, fmt.Errorf("terms array is empty")
		}
		if len(req.Terms) > 100 {
			return nil, fmt.Errorf("too many terms (max 100, got %d)", len(req.Terms))
		}
		results := make([]*termdb.LookupResult, len(req.Terms))
		for i, term := range req.Terms {
			results[i] = reg.Lookup(term, req.Opts)
		}
		return batchResponse{Results: results}, nil
	}
}

func expandTermEndpoint(reg *termdb.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*expandTermReq)
		return reg.LookupExpanded(req.Term, req.Opts, req.MaxVariants), nil
	}
}

func listTablesEndpoint(reg *termdb.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return tablesResponse{Tables: reg.ListTables()}, nil
	}
}
