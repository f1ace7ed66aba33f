// Package tools implements the MCP tool handlers for IDS authoring.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema, and a Handle() processing
// the request. One file groups the tools of one concern.
//
// All tools resolve the caller's document through the session store; the
// session identity comes from the MCP transport and is never a tool
// parameter.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
)

type contextKey string

const sessionIDKey contextKey = "ids-session-id"

// processSessionID backs transports that carry no per-client session, such
// as a bare stdio pipe: every call then shares one document.
var processSessionID = uuid.NewString()

// WithSessionID overrides session resolution for the given context. Tests
// use it to pin handlers to a known session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// sessionID resolves the caller's session identity: an explicit override,
// then the MCP client session, then the process-wide fallback.
func sessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v
	}
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		if id := cs.SessionID(); id != "" {
			return id
		}
	}
	return processSessionID
}

// jsonResult marshals a payload as the tool's text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns an error into a tool error result. Domain errors pass
// through verbatim since their messages are written for the calling agent;
// anything else is logged and, when masking is on, replaced by a generic
// message.
func errorResult(logger *zap.SugaredLogger, maskErrors bool, action string, err error) (*mcp.CallToolResult, error) {
	if ids.KindOf(err) != "" {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Errorw(action+" failed", "error", err)
	if maskErrors {
		return mcp.NewToolResultError(action + " failed"), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
}

// intArg extracts an integer argument, returning defaultVal when the key is
// missing or not a number (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// floatPtrArg extracts an optional number argument as a pointer, nil when
// absent.
func floatPtrArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// intPtrArg extracts an optional integer argument as a pointer, nil when
// absent.
func intPtrArg(req mcp.CallToolRequest, key string) *int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// stringSliceArg extracts an array-of-strings argument. Non-string elements
// are skipped.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
