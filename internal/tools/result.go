// Package tools exposes the use cases as MCP tools and resources.
package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/domain"
)

// ToolRegisterer is implemented by every handler in this package.
type ToolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

type errorBody struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status,omitempty"`
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// errorResult renders err as {"error":{...}} with IsError set. extra, when
// given, is merged next to the error key.
func errorResult(err error, extra map[string]any) (*mcp.CallToolResult, error) {
	body := errorBody{Code: domain.CodeOf(err), Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Status = de.Status
	}
	payload := map[string]any{"error": body}
	for k, v := range extra {
		payload[k] = v
	}
	b, mErr := json.MarshalIndent(payload, "", "  ")
	if mErr != nil {
		return nil, fmt.Errorf("encode error result: %w", mErr)
	}
	return mcp.NewToolResultError(string(b)), nil
}

func invalidArgs(format string, args ...any) (*mcp.CallToolResult, error) {
	return errorResult(domain.Errorf(domain.CodeValidation, format, args...), nil)
}

// decodeArg decodes args[key] into out, rejecting unknown object fields.
// It reports false when the key is absent or null.
func decodeArg(args map[string]any, key string, out any) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return false, domain.Wrap(domain.CodeValidation, err, "invalid "+key)
	}
	return true, nil
}

// argReader reads optional tool arguments. An absent or null key yields
// nil; a key of the wrong shape is remembered and reported by err.
type argReader struct {
	args map[string]any
	err  error
}

func newArgReader(args map[string]any) *argReader {
	return &argReader{args: args}
}

func (r *argReader) get(key string) (any, bool) {
	v, ok := r.args[key]
	return v, ok && v != nil
}

func (r *argReader) fail(key, want string, got any) {
	if r.err == nil {
		r.err = domain.Errorf(domain.CodeValidation, "invalid %s: expected %s, got %T", key, want, got)
	}
}

// str keeps an explicit empty string so that it can clear a field.
func (r *argReader) str(key string) *string {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	s, isStr := v.(string)
	if !isStr {
		r.fail(key, "string", v)
		return nil
	}
	return &s
}

// boolean distinguishes an absent flag from false.
func (r *argReader) boolean(key string) *bool {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	b, isBool := v.(bool)
	if !isBool {
		r.fail(key, "boolean", v)
		return nil
	}
	return &b
}

// integer accepts whole JSON numbers, which arrive as float64.
func (r *argReader) integer(key string) *int64 {
	v, ok := r.get(key)
	if !ok {
		return nil
	}
	var n int64
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			r.fail(key, "integer", v)
			return nil
		}
		n = int64(x)
	case int:
		n = int64(x)
	case int64:
		n = x
	default:
		r.fail(key, "integer", v)
		return nil
	}
	return &n
}

// list returns a non-nil pointer for any present list, including [].
func (r *argReader) list(key string) *[]string {
	var out []string
	ok, err := decodeArg(r.args, key, &out)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return nil
	}
	if !ok {
		return nil
	}
	if out == nil {
		out = []string{}
	}
	return &out
}

// values is list for callers that only need the values.
func (r *argReader) values(key string) []string {
	if p := r.list(key); p != nil {
		return *p
	}
	return nil
}
