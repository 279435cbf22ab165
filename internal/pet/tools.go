package pet

import (
	"context"

	"github.com/jamesprial/petview/internal/audit"
	"github.com/jamesprial/petview/internal/graphql"
	"github.com/jamesprial/petview/internal/preload"
	"github.com/jamesprial/petview/internal/query"
	"github.com/jamesprial/petview/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
)

const toolNamePetByID = "pet_by_id"

// PetTools returns the MCP tool registrations for reading the pet.
func PetTools(sender graphql.Sender, logger *audit.Logger) []tools.Registration {
	return []tools.Registration{
		toolPetByID(sender, logger),
	}
}

func toolPetByID(sender graphql.Sender, logger *audit.Logger) tools.Registration {
	tool := mcp.NewTool(toolNamePetByID,
		mcp.WithDescription("Fetch pet C-1 from the Pet Library and return its id, name and photo."),
	)

	fn := func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
		h := preload.Preload(ctx, sender, query.AppPetByIdQuery, nil)
		v, err := h.Read(ctx)
		if err != nil {
			return nil, err
		}
		return v.PetByID, nil
	}

	return tools.Registration{Tool: tool, Handler: tools.Audited(logger, toolNamePetByID, nil, fn)}
}
