// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the family tree to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kinfolk/internal/apperr"
	"github.com/starford/kinfolk/internal/familyservice"
	"github.com/starford/kinfolk/internal/models"
)

// TreeFormatURI is the resource describing the rendered tree shape.
const TreeFormatURI = "kinfolk://tree-format"

// Server wraps the MCP server with family tools.
type Server struct {
	mcp *server.MCPServer
	svc *familyservice.Service
}

// New creates a new MCP server with all family tools registered.
func New(svc *familyservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Kinfolk",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_persons",
		mcp.WithDescription("List every person without relations."),
		mcp.WithString("sort", mcp.Description("Sort order"), mcp.Enum(familyservice.SortByID, familyservice.SortByName)),
	), s.listPersons)

	s.mcp.AddTool(mcp.NewTool("get_person",
		mcp.WithDescription("Get one person with derived parents, children and spouses."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Person id")),
	), s.getPerson)

	s.mcp.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Build the family tree from the root person. "+
			"The result shape is described by the "+TreeFormatURI+" resource."),
	), s.getTree)

	link := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":     map[string]any{"type": "number"},
			"type":   map[string]any{"type": "string", "enum": []string{"biological", "adoptive"}},
			"status": map[string]any{"type": "string", "enum": []string{"current", "deceased", "divorced"}},
		},
		"required": []string{"id"},
	}
	s.mcp.AddTool(mcp.NewTool("add_person",
		mcp.WithDescription("Add a person together with links to existing parents, spouses and children. "+
			"Parent and child links take a type (biological, adoptive); spouse links take a status "+
			"(current, deceased, divorced)."),
		mcp.WithString("shortName", mcp.Required(), mcp.Description("Name shown in the tree")),
		mcp.WithString("fullName", mcp.Required(), mcp.Description("Full legal name")),
		mcp.WithString("gender", mcp.Required(), mcp.Enum(string(models.GenderMale), string(models.GenderFemale))),
		mcp.WithNumber("age", mcp.Description("Age in years")),
		mcp.WithString("status", mcp.Enum(string(models.StatusAlive), string(models.StatusDeceased))),
		mcp.WithString("phone"),
		mcp.WithString("address"),
		mcp.WithArray("parents", mcp.Items(link)),
		mcp.WithArray("spouses", mcp.Items(link)),
		mcp.WithArray("children", mcp.Items(link)),
	), s.addPerson)

	s.mcp.AddTool(mcp.NewTool("delete_person",
		mcp.WithDescription("Delete a person and every relationship touching it."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Person id")),
	), s.deletePerson)

	s.mcp.AddTool(mcp.NewTool("list_relationships",
		mcp.WithDescription("List the stored relationship edges. Spouse edges are stored once per couple."),
	), s.listRelationships)

	s.mcp.AddResource(
		mcp.NewResource(TreeFormatURI, "Tree Format",
			mcp.WithResourceDescription("Shape of the nodes returned by get_tree."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTreeFormatResource,
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

// toolError renders err the way the HTTP layer would, minus the status.
func toolError(err error) *mcp.CallToolResult {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		out, _ := json.Marshal(verr.Fields)
		return mcp.NewToolResultError("validation failed: " + string(out))
	case errors.Is(err, familyservice.ErrNoRoot):
		return mcp.NewToolResultError("no root")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, apperr.ErrCyclicGraph):
		return mcp.NewToolResultError("tree unavailable: cyclic graph")
	default:
		return mcp.NewToolResultError("operation failed: " + err.Error())
	}
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return int64(id), nil
}

func (s *Server) listPersons(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persons, err := s.svc.ListPersons(ctx, req.GetString("sort", familyservice.SortByID))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(persons)
}

func (s *Server) getPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.svc.GetMember(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(m)
}

func (s *Server) getTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.svc.Tree(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(view)
}

func (s *Server) addPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f familyservice.PersonForm
	if err := req.BindArguments(&f); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	m, err := s.svc.AddPerson(ctx, f)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(m)
}

func (s *Server) deletePerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeletePerson(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) listRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rels, err := s.svc.ListRelationships(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(rels)
}

func (s *Server) readTreeFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TreeFormatURI,
			MIMEType: "text/markdown",
			Text:     TreeFormatContract,
		},
	}, nil
}
