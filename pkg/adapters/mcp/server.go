package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/internal/presentation/graph"
	"github.com/aretw0/orca/pkg/attachment"
	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
	"github.com/aretw0/orca/pkg/session"
)

const (
	catalogURI = "orca://catalog"
	sessionURI = "orca://sessions/"
)

// RenderResponse mirrors the View of the HTTP API.
type RenderResponse struct {
	SessionID string                   `json:"session_id" jsonschema_description:"Session to pass to the next call"`
	State     *domain.State            `json:"state,omitempty" jsonschema_description:"The current session state"`
	Actions   []domain.ActionRequest   `json:"actions" jsonschema_description:"What the customer sees next"`
	Terminal  bool                     `json:"terminal" jsonschema_description:"True once the session is over"`
	Errors    []domain.ValidationError `json:"errors,omitempty" jsonschema_description:"Rejected answers, per field"`
}

// Engine is the part of the order engine the tools drive.
type Engine interface {
	Catalog() *catalog.Catalog
	Start(ctx context.Context, sessionID, profile string) (*domain.State, error)
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)
	Navigate(ctx context.Context, state *domain.State, input string) (*domain.State, error)
	SelectCategory(ctx context.Context, state *domain.State, key string) (*domain.State, error)
	SetFields(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error)
	Next(ctx context.Context, state *domain.State) (*domain.State, error)
	Back(ctx context.Context, state *domain.State) (*domain.State, error)
	Attach(ctx context.Context, state *domain.State, a domain.Attachment) (*domain.State, error)
	AttachVoiceNote(ctx context.Context, state *domain.State, a domain.Attachment, transcript string) (*domain.State, error)
	RemoveAttachment(ctx context.Context, state *domain.State, index int) (*domain.State, error)
	Classify(ctx context.Context, state *domain.State, text string) (*domain.State, error)
	Advise(ctx context.Context, state *domain.State, text string) (*domain.State, error)
	Submit(ctx context.Context, state *domain.State, channel domain.Channel) (*domain.State, error)
	Restart(ctx context.Context, state *domain.State) (*domain.State, error)
	Cancel(ctx context.Context, state *domain.State) (*domain.State, error)
}

// Server exposes order sessions as MCP tools.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("orca-mcp", strings.TrimSpace(orca.Version)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	allowAll := cors.AllowAll().Handler
	mux := http.NewServeMux()
	mux.Handle("/sse", allowAll(sseServer.SSEHandler()))
	mux.Handle("/message", allowAll(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type startArgs struct {
	Profile string `json:"profile"`
}

type inputArgs struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

type fieldsArgs struct {
	SessionID string            `json:"session_id"`
	Values    map[string]string `json:"values"`
}

type categoryArgs struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
}

type attachArgs struct {
	SessionID  string `json:"session_id"`
	Kind       string `json:"kind"`
	Payload    string `json:"payload"`
	Filename   string `json:"filename"`
	Transcript string `json:"transcript"`
}

type removeArgs struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

type textArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type submitArgs struct {
	SessionID string `json:"session_id"`
	Channel   string `json:"channel"`
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by start_session"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new order session on the welcome screen."),
		mcp.WithString("profile", mcp.Description("Profile whose saved contact details prefill the form (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Render the current screen of a session."),
		sessionParam(),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Answer the current question. Accepts the flow commands geri, iptal and yeni."),
		sessionParam(),
		mcp.WithString("input", mcp.Required(), mcp.Description("Answer text; empty starts the flow from the welcome screen")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("set_fields",
		mcp.WithDescription("Fill several fields of the current screen at once. All values are applied or none."),
		sessionParam(),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Map of field id to answer")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetFields))

	s.mcpServer.AddTool(mcp.NewTool("select_category",
		mcp.WithDescription("Pick a product category on the product screen."),
		sessionParam(),
		mcp.WithString("key", mcp.Required(), mcp.Description("Category key from orca://catalog")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelectCategory))

	s.mcpServer.AddTool(mcp.NewTool("next",
		mcp.WithDescription("Validate the current screen and advance."),
		sessionParam(),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.sessionOp(func(e Engine) stateOp { return e.Next })))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Return to the previous screen."),
		sessionParam(),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.sessionOp(func(e Engine) stateOp { return e.Back })))

	s.mcpServer.AddTool(mcp.NewTool("attach",
		mcp.WithDescription("Attach a photo or a voice note to the order."),
		sessionParam(),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(string(domain.AttachmentPhoto), string(domain.AttachmentAudio))),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Base64 file content, a data URL prefix is accepted")),
		mcp.WithString("filename", mcp.Description("Original file name")),
		mcp.WithString("transcript", mcp.Description("Voice note transcript")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleAttach))

	s.mcpServer.AddTool(mcp.NewTool("remove_attachment",
		mcp.WithDescription("Remove an attachment by its zero-based index."),
		sessionParam(),
		mcp.WithNumber("index", mcp.Required()),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemove))

	s.mcpServer.AddTool(mcp.NewTool("classify",
		mcp.WithDescription("Suggest a category from a free-text description of the need."),
		sessionParam(),
		mcp.WithString("text", mcp.Required()),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.textOp(func(e Engine) textOp { return e.Classify })))

	s.mcpServer.AddTool(mcp.NewTool("advise",
		mcp.WithDescription("Ask the assistant about the current order."),
		sessionParam(),
		mcp.WithString("text", mcp.Required()),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.textOp(func(e Engine) textOp { return e.Advise })))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Send the confirmed order."),
		sessionParam(),
		mcp.WithString("channel", mcp.Required(), mcp.Enum(string(domain.ChannelEmail), string(domain.ChannelWhatsApp), string(domain.ChannelBoth))),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("restart",
		mcp.WithDescription("Discard the draft and start over."),
		sessionParam(),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.sessionOp(func(e Engine) stateOp { return e.Restart })))

	s.mcpServer.AddTool(mcp.NewTool("cancel",
		mcp.WithDescription("End the session without sending anything."),
		sessionParam(),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.sessionOp(func(e Engine) stateOp { return e.Cancel })))
}

type stateOp func(context.Context, *domain.State) (*domain.State, error)

type textOp func(context.Context, *domain.State, string) (*domain.State, error)

func (s *Server) render(ctx context.Context, state *domain.State, verrs domain.ValidationErrors) (RenderResponse, error) {
	actions, terminal, err := s.engine.Render(ctx, state)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{
		SessionID: state.SessionID,
		State:     state.Redacted(),
		Actions:   actions,
		Terminal:  terminal,
		Errors:    verrs,
	}, nil
}

// apply runs op under the session lock. Rejected answers are not tool
// failures: the response carries them so the caller can ask again.
func (s *Server) apply(ctx context.Context, sessionID string, op stateOp) (RenderResponse, error) {
	if sessionID == "" {
		return RenderResponse{}, errors.New("session_id is required")
	}
	next, err := s.sessions.Update(ctx, sessionID, func(current *domain.State) (*domain.State, error) {
		return op(ctx, current)
	})
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) && next != nil {
			return s.render(ctx, next, verrs)
		}
		return RenderResponse{}, err
	}
	return s.render(ctx, next, nil)
}

func (s *Server) sessionOp(pick func(Engine) stateOp) func(context.Context, mcp.CallToolRequest, sessionArgs) (RenderResponse, error) {
	op := pick(s.engine)
	return func(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (RenderResponse, error) {
		return s.apply(ctx, args.SessionID, op)
	}
}

func (s *Server) textOp(pick func(Engine) textOp) func(context.Context, mcp.CallToolRequest, textArgs) (RenderResponse, error) {
	op := pick(s.engine)
	return func(ctx context.Context, _ mcp.CallToolRequest, args textArgs) (RenderResponse, error) {
		text, err := runner.SanitizeInput(args.Text)
		if err != nil {
			return RenderResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return RenderResponse{}, errors.New("text is required")
		}
		return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return op(ctx, st, text)
		})
	}
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (RenderResponse, error) {
	id := s.newID()
	state, err := s.sessions.LoadOrStart(ctx, id, func(ctx context.Context, id string) (*domain.State, error) {
		return s.engine.Start(ctx, id, args.Profile)
	})
	if err != nil {
		return RenderResponse{}, err
	}
	s.logger.Info("MCP session started", "session_id", id)
	return s.render(ctx, state, nil)
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (RenderResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return RenderResponse{}, err
	}
	return s.render(ctx, state, nil)
}

func (s *Server) handleNavigate(ctx context.Context, _ mcp.CallToolRequest, args inputArgs) (RenderResponse, error) {
	clean, err := runner.SanitizeInput(args.Input)
	if err != nil {
		s.logger.Warn("MCP navigate: input rejected", "err", err, "size", len(args.Input))
		return RenderResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Navigate(ctx, st, clean)
	})
}

func (s *Server) handleSetFields(ctx context.Context, _ mcp.CallToolRequest, args fieldsArgs) (RenderResponse, error) {
	values := make(map[string]string, len(args.Values))
	for id, v := range args.Values {
		clean, err := runner.SanitizeInput(v)
		if err != nil {
			return RenderResponse{}, fmt.Errorf("input rejected for %s: %w", id, err)
		}
		values[id] = clean
	}
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.SetFields(ctx, st, values)
	})
}

func (s *Server) handleSelectCategory(ctx context.Context, _ mcp.CallToolRequest, args categoryArgs) (RenderResponse, error) {
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.SelectCategory(ctx, st, args.Key)
	})
}

func (s *Server) handleAttach(ctx context.Context, _ mcp.CallToolRequest, args attachArgs) (RenderResponse, error) {
	payload := args.Payload
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return RenderResponse{}, errors.New("payload is not base64")
	}

	switch domain.AttachmentKind(args.Kind) {
	case domain.AttachmentPhoto:
		a, err := attachment.NewPhoto(args.Filename, data)
		if err != nil {
			return RenderResponse{}, err
		}
		return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return s.engine.Attach(ctx, st, a)
		})
	case domain.AttachmentAudio:
		a, transcript, err := attachment.NewVoiceNote(args.Filename, data, args.Transcript, s.now())
		if err != nil {
			return RenderResponse{}, err
		}
		return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return s.engine.AttachVoiceNote(ctx, st, a, transcript)
		})
	}
	return RenderResponse{}, fmt.Errorf("unknown attachment kind %q", args.Kind)
}

func (s *Server) handleRemove(ctx context.Context, _ mcp.CallToolRequest, args removeArgs) (RenderResponse, error) {
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.RemoveAttachment(ctx, st, args.Index)
	})
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args submitArgs) (RenderResponse, error) {
	return s.apply(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Submit(ctx, st, domain.Channel(args.Channel))
	})
}

func (s *Server) registerResources() {
	// EXPOSE: orca://catalog
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Product Catalog",
		mcp.WithResourceDescription("Categories, subcategories and standard sizes"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Catalog().All())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: orca://sessions/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURI+"{id}", "Session Flow",
		mcp.WithTemplateDescription("Mermaid chart of the screens a session has visited"),
		mcp.WithTemplateMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, sessionURI)
		state, err := s.sessions.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(graph.OverlayFor(state)),
			},
		}, nil
	})
}
