package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jamesprial/petview/internal/audit"
	"github.com/jamesprial/petview/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
)

const toolNameGraphQLQuery = "graphql_query"

// GraphQLTools returns the tool registrations for the GraphQL escape hatch:
// a single "graphql_query" tool that sends an arbitrary document to the Pet
// Library API and returns the full response envelope.
func GraphQLTools(sender Sender, logger *audit.Logger) []tools.Registration {
	return []tools.Registration{
		toolGraphQLQuery(sender, logger),
	}
}

func toolGraphQLQuery(sender Sender, logger *audit.Logger) tools.Registration {
	tool := mcp.NewTool(toolNameGraphQLQuery,
		mcp.WithDescription("Send an arbitrary GraphQL document to the Pet Library API and return the raw response, including any GraphQL errors."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The GraphQL document to send."),
		),
		mcp.WithString("variables",
			mcp.Description("Optional JSON object string of variables to pass with the query."),
		),
	)

	params := func(req mcp.CallToolRequest) map[string]any {
		return map[string]any{
			"query":     req.GetString("query", ""),
			"variables": req.GetString("variables", ""),
		}
	}

	fn := func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		query := req.GetString("query", "")
		if query == "" {
			return nil, errors.New("query is required")
		}

		var vars map[string]any
		if s := req.GetString("variables", ""); s != "" {
			if err := json.Unmarshal([]byte(s), &vars); err != nil {
				return nil, fmt.Errorf("parse variables JSON: %w", err)
			}
		}

		return sender.Send(ctx, query, vars)
	}

	return tools.Registration{Tool: tool, Handler: tools.Audited(logger, toolNameGraphQLQuery, params, fn)}
}
