package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ExecuteResponse is the JSON text returned by execute_chain.
type ExecuteResponse struct {
	Result  *domain.Result  `json:"result" jsonschema_description:"The resolved result of the chain"`
	Effects []domain.Effect `json:"effects" jsonschema_description:"Entities the executed actions modified"`
	Trace   string          `json:"trace,omitempty" jsonschema_description:"Mermaid flowchart of the run"`
}

// ValidateResponse is the JSON text returned by validate_chain.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Server exposes chain execution as an MCP Server.
type Server struct {
	registry  *registry.Registry
	manager   ports.TransactionManager
	chains    ports.ChainRepository
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

// WithTransactionManager sets where chains get their transaction handles.
func WithTransactionManager(m ports.TransactionManager) Option {
	return func(s *Server) {
		s.manager = m
	}
}

// WithRepository enables running stored chains by id.
func WithRepository(repo ports.ChainRepository) Option {
	return func(s *Server) {
		s.chains = repo
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		registry:  reg,
		mcpServer: server.NewMCPServer("actionchain-mcp", strings.TrimSpace(actionchain.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	executeTool := mcp.NewTool("execute_chain",
		mcp.WithDescription("Run an action chain against an input dataset. All changes are rolled back if an action fails."),
		mcp.WithString("chain", mcp.Description("The chain definition as YAML or JSON (optional if chain_id is provided)")),
		mcp.WithString("chain_id", mcp.Description("The id of a stored chain")),
		mcp.WithString("input", mcp.Description("The input dataset as YAML or JSON: {entity, key, rows}")),
		mcp.WithString("params", mcp.Description("JSON object of invocation parameters")),
	)
	s.mcpServer.AddTool(executeTool, s.handleExecute)

	validateTool := mcp.NewTool("validate_chain",
		mcp.WithDescription("Check a chain definition without running it."),
		mcp.WithString("chain", mcp.Required(), mcp.Description("The chain definition as YAML or JSON")),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("list_action_types",
		mcp.WithDescription("List the action types a chain definition can use."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.registry.Types())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.chainArg(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var input *domain.Dataset
	if raw := request.GetString("input", ""); raw != "" {
		input, err = schema.ParseDataset([]byte(raw), schema.FormatYAML)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid input: %v", err)), nil
		}
	}

	params := map[string]any{}
	if raw := request.GetString("params", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid params: %v", err)), nil
		}
	}

	opts := []actionchain.Option{actionchain.WithLogger(s.logger)}
	if s.manager != nil {
		opts = append(opts, actionchain.WithTransactionManager(s.manager))
	}
	chain, err := actionchain.Build(cfg, s.registry, opts...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, trace, err := chain.Execute(ctx, domain.NewTask(input, params), nil)
	if err != nil {
		s.logger.Warn("MCP execute_chain failed", "chain", chain.Identity(), "err", err)
		msg := fmt.Sprintf("chain failed: %v", err)
		if diagram := trace.String(); diagram != "" {
			msg += "\n\n" + diagram
		}
		return mcp.NewToolResultError(msg), nil
	}

	jsonBytes, err := json.Marshal(ExecuteResponse{
		Result:  outcome.Result,
		Effects: outcome.Effects,
		Trace:   trace.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode outcome: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := ValidateResponse{Valid: true}

	cfg, err := schema.Parse([]byte(request.GetString("chain", "")), schema.FormatYAML)
	switch {
	case err != nil:
		resp = ValidateResponse{Errors: []string{err.Error()}}
	default:
		if err := schema.Validate(cfg); err != nil {
			resp.Valid = false
			for _, e := range schema.ValidationErrors(err) {
				resp.Errors = append(resp.Errors, e.Error())
			}
		} else if _, err := actionchain.Build(cfg, s.registry); err != nil {
			resp = ValidateResponse{Errors: []string{err.Error()}}
		}
	}

	jsonBytes, _ := json.Marshal(resp)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// chainArg reads the chain definition from the "chain" argument or the
// repository entry named by "chain_id".
func (s *Server) chainArg(ctx context.Context, request mcp.CallToolRequest) (*schema.ChainConfig, error) {
	if raw := request.GetString("chain", ""); raw != "" {
		cfg, err := schema.Parse([]byte(raw), schema.FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("invalid chain: %w", err)
		}
		return cfg, nil
	}

	id := request.GetString("chain_id", "")
	if id == "" || s.chains == nil {
		return nil, errors.New("either chain or chain_id is required")
	}
	return s.chains.GetChain(ctx, id)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("actionchain://chains", "Stored Chains",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids := []string{}
		if s.chains != nil {
			var err error
			ids, err = s.chains.ListChains(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list chains: %w", err)
			}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "actionchain://chains",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
