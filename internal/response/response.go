package response

import (
	"encoding/json"
	"net/http"
)

// StandardResponse represents the standard API response format
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta carries request metadata
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// ToolResult is the payload of every tool call: the text an orchestrator
// hands back to the conversation.
type ToolResult struct {
	Text string `json:"text"`
}

// Success sends a successful response
func Success(w http.ResponseWriter, data interface{}, meta *Meta) {
	write(w, http.StatusOK, StandardResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Text sends a successful tool result
func Text(w http.ResponseWriter, text string, meta *Meta) {
	Success(w, ToolResult{Text: text}, meta)
}

// Error sends an error response
func Error(w http.ResponseWriter, message string, statusCode int) {
	ErrorWithCode(w, http.StatusText(statusCode), message, statusCode, nil)
}

// ErrorWithCode sends an error response with a machine-readable code. The
// rendered message is also sent as the tool text so the orchestrator can
// relay it unchanged.
func ErrorWithCode(w http.ResponseWriter, code, message string, statusCode int, meta *Meta) {
	write(w, statusCode, StandardResponse{
		Success: false,
		Data:    ToolResult{Text: message},
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
		Meta: meta,
	})
}

// ErrorWithDetails sends an error response with additional details
func ErrorWithDetails(w http.ResponseWriter, message string, details string, statusCode int) {
	write(w, statusCode, StandardResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    http.StatusText(statusCode),
			Message: message,
			Details: details,
		},
	})
}

func write(w http.ResponseWriter, statusCode int, body StandardResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
