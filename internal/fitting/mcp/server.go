// Package mcp implements the Model Context Protocol server.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/engine"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Server implements an MCP server over stdio.
type Server struct {
	engine   *engine.Engine
	logger   *slog.Logger
	handlers map[string]MethodHandler
	schemas  map[string]*gojsonschema.Schema
}

// MethodHandler handles a specific JSON-RPC method.
type MethodHandler func(ctx context.Context, params json.RawMessage) (any, error)

// NewServer creates a new MCP server.
func NewServer(eng *engine.Engine, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	s := &Server{
		engine:   eng,
		logger:   logger,
		handlers: make(map[string]MethodHandler),
		schemas:  make(map[string]*gojsonschema.Schema),
	}

	for _, tool := range GetToolDefinitions() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compiling input schema of %s: %w", tool.Name, err)
		}
		s.schemas[tool.Name] = schema
	}

	// Register handlers
	s.handlers["initialize"] = s.handleInitialize
	s.handlers["tools/list"] = s.handleToolsList
	s.handlers["tools/call"] = s.handleToolsCall

	return s, nil
}

// Request represents a JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidReq     = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// Run starts the server, reading from stdin and writing to stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers newline-delimited requests from r on w until r is exhausted
// or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)

	s.logger.Info("MCP server starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if resp := s.handleRequest(ctx, line); resp != nil {
				if err := s.writeResponse(w, resp); err != nil {
					s.logger.Error("failed to write response", "error", err)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
	}
}

// handleRequest processes a single request. Notifications get no response.
func (s *Server) handleRequest(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, &Error{Code: ErrCodeParse, Message: "Parse error", Data: err.Error()})
	}

	s.logger.Debug("received request", "method", req.Method, "id", req.ID)

	if req.JSONRPC != "2.0" || req.Method == "" {
		return errorResponse(req.ID, &Error{Code: ErrCodeInvalidReq, Message: "Invalid request"})
	}

	handler, ok := s.handlers[req.Method]
	switch {
	case !ok && req.ID == nil:
		return nil
	case !ok:
		return errorResponse(req.ID, &Error{Code: ErrCodeMethodNotFound, Message: "Method not found: " + req.Method})
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		code := ErrCodeInternal
		if errors.Is(err, errInvalidParams) {
			code = ErrCodeInvalidParams
		} else {
			s.logger.Error("request failed", "method", req.Method, "error", err)
		}
		return errorResponse(req.ID, &Error{Code: code, Message: err.Error()})
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func errorResponse(id any, e *Error) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}

// writeResponse writes a JSON-RPC response.
func (s *Server) writeResponse(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Initialize result.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Capabilities    Capabilities `json:"capabilities"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (any, error) {
	return InitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo: ServerInfo{
			Name:    "waitlist-fitting",
			Version: "0.1.0",
		},
		Capabilities: Capabilities{
			Tools: &ToolsCapability{},
		},
	}, nil
}

// ToolsListResult is the response for tools/list.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

func (s *Server) handleToolsList(ctx context.Context, params json.RawMessage) (any, error) {
	return ToolsListResult{
		Tools: GetToolDefinitions(),
	}, nil
}

// ToolCallParams are the parameters for tools/call.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallResult is the response for tools/call.
type ToolCallResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var errInvalidParams = errors.New("invalid params")

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var p ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	if len(p.Arguments) == 0 || string(p.Arguments) == "null" {
		p.Arguments = json.RawMessage("{}")
	}

	s.logger.Debug("calling tool", "name", p.Name)

	schema, ok := s.schemas[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidParams, p.Name)
	}
	if problems, err := validateArguments(schema, p.Arguments); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidParams, err)
	} else if len(problems) > 0 {
		return errorResult(fmt.Sprintf("invalid arguments for %s: %v", p.Name, problems)), nil
	}

	result, err := s.callTool(ctx, p.Name, p.Arguments)
	if err != nil {
		if fitting.IsRejectedInput(err) {
			s.logger.Debug("tool rejected input", "name", p.Name, "error", err)
			return errorResult(err.Error()), nil
		}
		return ToolCallResult{}, fmt.Errorf("tool call failed: %w", err)
	}

	// Marshal result to JSON for text output
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}

	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: string(resultJSON)}},
	}, nil
}

func errorResult(msg string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: msg}},
		IsError: true,
	}
}

// FieldError is one schema violation in tool arguments.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// validateArguments checks args against a tool's input schema. The error is
// set only when args cannot be read at all.
func validateArguments(schema *gojsonschema.Schema, args json.RawMessage) ([]FieldError, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, FieldError{Field: e.Field(), Message: e.Description()})
	}
	return problems, nil
}

// callTool dispatches to the appropriate tool handler.
func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "parse_fit":
		return s.toolParseFit(ctx, args)
	case "compare_fit":
		return s.toolCompareFit(ctx, args)
	case "match_fit":
		return s.toolMatchFit(ctx, args)
	case "skill_plans":
		return s.engine.SkillPlans(ctx)
	case "check_fit":
		return s.toolCheckFit(ctx, args)
	case "list_fittings":
		return s.engine.Fittings(ctx)
	case "verify_doctrine":
		return s.toolVerifyDoctrine(ctx)
	case "hull_skills":
		return s.toolHullSkills(ctx, args)
	case "item_variations":
		return s.toolItemVariations(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}
