// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz calendar tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/dayservice"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *dayservice.Service
}

// New creates a new MCP server with all Dagaz tools registered.
func New(svc *dayservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List calendar events within a date range (inclusive)."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Range start, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Range end, YYYY-MM-DD")),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("add_event",
		mcp.WithDescription("Add a whole-day event to the calendar. "+
			"Events are identified afterwards by the fingerprint returned here. "+
			"Read the data format via the get_data_contract tool or the "+
			"dagaz://data-format resource."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the event, YYYY-MM-DD")),
		mcp.WithString("message", mcp.Required(), mcp.Description("One-line event description")),
		mcp.WithString("note", mcp.Description("Optional free-form note body attached to the event")),
	), s.addEvent)

	s.mcp.AddTool(mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event selected by a fingerprint prefix."),
		mcp.WithString("fingerprint", mcp.Required(), mcp.Description("Unique fingerprint prefix of the event")),
	), s.deleteEvent)

	s.mcp.AddTool(mcp.NewTool("move_event",
		mcp.WithDescription("Move an event to another day. The fingerprint changes with the day; "+
			"the new fingerprint is returned."),
		mcp.WithString("fingerprint", mcp.Required(), mcp.Description("Unique fingerprint prefix of the event")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Target day, YYYY-MM-DD")),
	), s.moveEvent)

	s.mcp.AddTool(mcp.NewTool("duplicate_event",
		mcp.WithDescription("Copy an event onto another day, keeping the original."),
		mcp.WithString("fingerprint", mcp.Required(), mcp.Description("Unique fingerprint prefix of the event")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Target day, YYYY-MM-DD")),
	), s.duplicateEvent)

	s.mcp.AddTool(mcp.NewTool("search_events",
		mcp.WithDescription("Full-text search through event messages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEvents)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the note attached to an event. The note id is the "+
			"'note' field of an event returned by other tools."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("get_data_contract",
		mcp.WithDescription("Returns the canonical Dagaz calendar data format contract."),
	), s.getDataContract)

	// Resource: data format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://data-format", "Calendar Data Format Contract",
			mcp.WithResourceDescription("Canonical on-disk calendar data format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDataFormatResource,
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

func parseDay(req mcp.CallToolRequest, key string) (time.Time, error) {
	raw, err := req.RequireString(key)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.ParseInLocation(dayservice.DateFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q (want YYYY-MM-DD)", key, raw)
	}
	return day, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := parseDay(req, "from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := parseDay(req, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := s.svc.Range(ctx, from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(events), nil
}

func (s *Server) addEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := parseDay(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note := req.GetString("note", "")

	detail, err := s.svc.Create(ctx, day, message, note, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail), nil
}

func (s *Server) deleteEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("fingerprint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, prefix); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", prefix)), nil
}

func (s *Server) moveEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("fingerprint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := parseDay(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.Move(ctx, prefix, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail), nil
}

func (s *Server) duplicateEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("fingerprint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := parseDay(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.Duplicate(ctx, prefix, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail), nil
}

func (s *Server) searchEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := s.svc.Note(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) getDataContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DataFormatContract), nil
}

func (s *Server) readDataFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://data-format",
			MIMEType: "text/markdown",
			Text:     DataFormatContract,
		},
	}, nil
}
