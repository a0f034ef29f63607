// Package mcp exposes story sessions as Model Context Protocol tools, so an
// agent can play a run the same way the HTTP shell does.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/presentation/graph"
	"github.com/xdsai/persephone/internal/presentation/tui"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/session"
)

const serverName = "persephone-mcp"

// GraphURI is the resource holding the story graph as Mermaid.
const GraphURI = "persephone://graph"

var (
	errChoiceUnavailable = errors.New("that choice is not available")
	errNoWayBack         = errors.New("there is no way back")
	errUnknownNode       = errors.New("unknown node")
	errNothingAnswers    = errors.New("nothing answers")
)

// ChoiceView is one menu entry. Index is what the choose tool accepts.
type ChoiceView struct {
	Index   int    `json:"index" jsonschema_description:"Value to pass to choose; -1 when disabled"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty" jsonschema_description:"Why a disabled choice is locked"`
}

// RunView is the result of every session tool.
type RunView struct {
	SessionID string       `json:"session_id"`
	NodeID    string       `json:"node_id"`
	Text      string       `json:"text"`
	Ending    bool         `json:"ending" jsonschema_description:"The run reached a terminal node"`
	Title     string       `json:"title,omitempty"`
	Choices   []ChoiceView `json:"choices"`
	State     domain.State `json:"state"`
	CanBack   bool         `json:"can_back"`
	Message   string       `json:"message,omitempty" jsonschema_description:"Text produced by a hidden command"`
}

// SessionList is the result of list_sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

type sessionInput struct {
	SessionID string `json:"session_id"`
}

type chooseInput struct {
	SessionID string `json:"session_id"`
	Index     *int   `json:"index"`
}

type gotoInput struct {
	SessionID   string `json:"session_id"`
	NodeID      string `json:"node_id"`
	PushHistory bool   `json:"push_history"`
}

type invokeInput struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

// Server wraps a session manager and exposes it as an MCP server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(serverName, persephone.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.mcpServer.AddTools(s.tools()...)
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Story graph",
		mcp.WithResourceDescription("The story graph as a Mermaid flowchart"),
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Handler serves the MCP streamable HTTP transport, for mounting next to the JSON API.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

func (s *Server) tools() []server.ServerTool {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_session"))
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("start_session",
				mcp.WithDescription("Start a new run of the story. Resumes the run when session_id already exists."),
				mcp.WithString("session_id", mcp.Description("Optional id; a random one is generated when empty")),
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.startSession,
		},
		{
			Tool: mcp.NewTool("list_sessions",
				mcp.WithDescription("List the ids of every saved run."),
				mcp.WithOutputSchema[SessionList](),
			),
			Handler: s.listSessions,
		},
		{
			Tool: mcp.NewTool("view_session",
				mcp.WithDescription("Show the current node, its choices and the player state."),
				sessionID,
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.viewSession,
		},
		{
			Tool: mcp.NewTool("choose",
				mcp.WithDescription("Take an enabled choice by its index."),
				sessionID,
				mcp.WithNumber("index", mcp.Required(), mcp.Description("Index of an enabled choice"), mcp.Min(0)),
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.choose,
		},
		{
			Tool: mcp.NewTool("back",
				mcp.WithDescription("Return to the previous node while the run can still roam."),
				sessionID,
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.back,
		},
		{
			Tool: mcp.NewTool("goto",
				mcp.WithDescription("Jump directly to a node."),
				sessionID,
				mcp.WithString("node_id", mcp.Required(), mcp.Description("Target node")),
				mcp.WithBoolean("push_history", mcp.Description("Record the jump so back can undo it")),
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.goTo,
		},
		{
			Tool: mcp.NewTool("invoke",
				mcp.WithDescription("Invoke a hidden command by name or alias."),
				sessionID,
				mcp.WithString("command", mcp.Required(), mcp.Description("Command name, with or without the leading /")),
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.invoke,
		},
		{
			Tool: mcp.NewTool("reset",
				mcp.WithDescription("Restart the run from the beginning."),
				sessionID,
				mcp.WithOutputSchema[RunView](),
			),
			Handler: s.reset,
		},
	}
}

func newRunView(id string, e *runtime.Engine) RunView {
	node := e.Current()
	view := RunView{
		SessionID: id,
		NodeID:    node.ID,
		Text:      node.Text,
		Ending:    node.IsEnding(),
		Title:     node.Title,
		Choices:   []ChoiceView{},
		State:     e.State(),
		CanBack:   e.CanBack(),
	}
	for _, rc := range e.RenderableChoices() {
		view.Choices = append(view.Choices, ChoiceView{
			Index:   rc.Index,
			Text:    rc.Choice.Text,
			Enabled: rc.Enabled,
			Reason:  rc.Reason,
		})
	}
	return view
}

func (s *Server) startSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input sessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	id := strings.TrimSpace(input.SessionID)
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := s.manager.LoadOrStart(ctx, id); err != nil {
		return s.toolError(err), nil
	}
	s.logger.Info("MCP session started", "session_id", id)
	return s.view(ctx, id)
}

func (s *Server) listSessions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.manager.List(ctx)
	if err != nil {
		return s.toolError(err), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return mcp.NewToolResultStructuredOnly(SessionList{Sessions: ids}), nil
}

func (s *Server) viewSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input sessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.view(ctx, input.SessionID)
}

func (s *Server) choose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input chooseInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if input.Index == nil {
		return mcp.NewToolResultError("index is required"), nil
	}
	return s.update(ctx, input.SessionID, func(e *runtime.Engine, _ *RunView) error {
		if !e.ChooseOffered(*input.Index) {
			return errChoiceUnavailable
		}
		return nil
	})
}

func (s *Server) back(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input sessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.update(ctx, input.SessionID, func(e *runtime.Engine, _ *RunView) error {
		if !e.Back() {
			return errNoWayBack
		}
		return nil
	})
}

func (s *Server) goTo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input gotoInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.update(ctx, input.SessionID, func(e *runtime.Engine, _ *RunView) error {
		if !e.GoTo(input.NodeID, input.PushHistory) {
			return errUnknownNode
		}
		return nil
	})
}

func (s *Server) invoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input invokeInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	clean, err := tui.SanitizeInput(input.Command)
	if err != nil {
		s.logger.Warn("MCP invoke: input rejected", "err", err, "size", len(input.Command))
		return mcp.NewToolResultErrorFromErr("input rejected", err), nil
	}
	return s.update(ctx, input.SessionID, func(e *runtime.Engine, view *RunView) error {
		res, ok := e.Invoke(strings.TrimPrefix(clean, tui.CommandPrefix))
		if !ok {
			return errNothingAnswers
		}
		view.Message = res.Message
		return nil
	})
}

func (s *Server) reset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input sessionInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.update(ctx, input.SessionID, func(e *runtime.Engine, _ *RunView) error {
		e.Reset()
		return nil
	})
}

func (s *Server) view(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	var view RunView
	err := s.manager.ViewExisting(ctx, id, func(e *runtime.Engine) error {
		view = newRunView(id, e)
		return nil
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return mcp.NewToolResultStructuredOnly(view), nil
}

// update runs fn on an existing session and returns the view after it.
// Nothing is saved when fn fails.
func (s *Server) update(ctx context.Context, id string, fn func(*runtime.Engine, *RunView) error) (*mcp.CallToolResult, error) {
	var view RunView
	err := s.manager.UpdateExisting(ctx, id, func(e *runtime.Engine) error {
		var out RunView
		if err := fn(e, &out); err != nil {
			return err
		}
		view = newRunView(id, e)
		view.Message = out.Message
		return nil
	})
	if err != nil {
		return s.toolError(err), nil
	}
	return mcp.NewToolResultStructuredOnly(view), nil
}

// toolError reports failures as tool results so the agent can read them.
// Unknown and locked commands share one message.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, domain.ErrSaveNotFound) {
		return mcp.NewToolResultError("session not found")
	}
	switch {
	case errors.Is(err, errChoiceUnavailable), errors.Is(err, errNoWayBack),
		errors.Is(err, errUnknownNode), errors.Is(err, errNothingAnswers):
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Error("MCP tool failed", "err", err)
	return mcp.NewToolResultErrorFromErr("session update failed", err)
}

func (s *Server) readGraph(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(s.manager.Story(), nil),
		},
	}, nil
}
