// Package mcp exposes Grantha search over the Model Context Protocol.
package mcp

import (
	"errors"
	"fmt"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// MCP error codes. Negative values follow JSON-RPC convention; the
// -320xx range is Grantha-specific.
const (
	ErrCodePackNotInstalled = -32001
	ErrCodeEmbeddingFailed  = -32002
	ErrCodeSearchFailed     = -32003

	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is a protocol error with a JSON-RPC style code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError builds a parameter validation error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	var ge *grerrors.GranthaError
	if errors.As(err, &ge) {
		switch ge.Code {
		case grerrors.ErrCodePackCorrupt, grerrors.ErrCodeFileNotFound:
			return &MCPError{Code: ErrCodePackNotInstalled, Message: ge.Message}
		case grerrors.ErrCodeEmbeddingFailed, grerrors.ErrCodeDimensionMismatch:
			return &MCPError{Code: ErrCodeEmbeddingFailed, Message: ge.Message}
		case grerrors.ErrCodeSearchFailed:
			return &MCPError{Code: ErrCodeSearchFailed, Message: ge.Message}
		case grerrors.ErrCodeInvalidInput, grerrors.ErrCodeInvalidQuery,
			grerrors.ErrCodeQueryEmpty, grerrors.ErrCodeInvalidPath:
			return &MCPError{Code: ErrCodeInvalidParams, Message: ge.Message}
		default:
			return &MCPError{Code: ErrCodeInternalError, Message: ge.Error()}
		}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
}
