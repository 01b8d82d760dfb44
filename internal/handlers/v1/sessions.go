package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/render"
	"go401-gateway/internal/response"
	"go401-gateway/internal/secure"
	"go401-gateway/internal/session"
)

// Operations is the secure operation set served over HTTP
type Operations interface {
	Authenticate(ctx context.Context, sessionID, email string) (identity.Identity, error)
	Logout(ctx context.Context, sessionID string) error
	CheckPermissions(ctx context.Context, sessionID string) (*secure.PermissionSummary, error)
	CompanyCount(ctx context.Context, sessionID string) (*secure.CountResult, error)
	CompanyList(ctx context.Context, sessionID string) (*secure.RowsResult, error)
	ParticipantList(ctx context.Context, sessionID, companyID string) (*secure.RowsResult, error)
	ListDatasets(ctx context.Context, sessionID string) ([]datasource.DatasetInfo, error)
	DatasetInfo(ctx context.Context, sessionID, datasetID string) (*secure.DatasetSummary, error)
	TableSchema(ctx context.Context, sessionID, datasetID, tableID string) (*datasource.TableInfo, error)
	SearchTables(ctx context.Context, sessionID, datasetID, term string) (*secure.SearchResult, error)
	RawQuery(ctx context.Context, sessionID, query string) (*secure.RowsResult, error)
}

// SessionHandler exposes the tools an orchestrator calls for a session
type SessionHandler struct {
	ops    Operations
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(ops Operations, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{ops: ops, logger: logger}
}

// Routes mounts the session tools on r
func (h *SessionHandler) Routes(r chi.Router) {
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/authenticate", h.Authenticate)
		r.Delete("/", h.Logout)
		r.Get("/permissions", h.Permissions)
		r.Get("/companies/count", h.CompanyCount)
		r.Get("/companies", h.Companies)
		r.Get("/participants", h.Participants)
		r.Post("/query", h.Query)

		r.Route("/catalog/datasets", func(r chi.Router) {
			r.Get("/", h.Datasets)
			r.Get("/{datasetID}", h.Dataset)
			r.Get("/{datasetID}/tables/{tableID}", h.Table)
			r.Get("/{datasetID}/search", h.Search)
		})
	})
}

// AuthenticateRequest is the body of an authenticate call
type AuthenticateRequest struct {
	Email string `json:"email"`
}

// QueryRequest is the body of a raw query call
type QueryRequest struct {
	SQL string `json:"sql"`
}

// Authenticate binds the identity for the posted email to the session
func (h *SessionHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "Invalid request body")
		return
	}

	id, err := h.ops.Authenticate(r.Context(), sessionID(r), req.Email)
	if err != nil {
		h.fail(w, r, "authenticate", err)
		return
	}
	h.text(w, r, "authenticate", render.Authenticated(id))
}

// Logout clears the session identity
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.ops.Logout(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, "logout", err)
		return
	}
	h.text(w, r, "logout", render.LoggedOut())
}

// Permissions describes the session identity and its data scope
func (h *SessionHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ops.CheckPermissions(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, "check_permissions", err)
		return
	}
	h.text(w, r, "check_permissions", render.Permissions(summary))
}

// CompanyCount counts the companies visible to the session
func (h *SessionHandler) CompanyCount(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.CompanyCount(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, "company_count", err)
		return
	}
	h.text(w, r, "company_count", render.CompanyCount(res))
}

// Companies lists the companies visible to the session
func (h *SessionHandler) Companies(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.CompanyList(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, "company_list", err)
		return
	}
	h.text(w, r, "company_list", render.Rows(res))
}

// Participants lists visible participants, optionally for one company
func (h *SessionHandler) Participants(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.ParticipantList(r.Context(), sessionID(r), r.URL.Query().Get("company_id"))
	if err != nil {
		h.fail(w, r, "participant_list", err)
		return
	}
	h.text(w, r, "participant_list", render.Rows(res))
}

// Datasets lists the project datasets
func (h *SessionHandler) Datasets(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.ListDatasets(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, "list_datasets", err)
		return
	}
	h.text(w, r, "list_datasets", render.Datasets(res))
}

// Dataset describes one dataset and previews its tables
func (h *SessionHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.DatasetInfo(r.Context(), sessionID(r), chi.URLParam(r, "datasetID"))
	if err != nil {
		h.fail(w, r, "dataset_info", err)
		return
	}
	h.text(w, r, "dataset_info", render.DatasetSummary(res))
}

// Table returns a table schema
func (h *SessionHandler) Table(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.TableSchema(r.Context(), sessionID(r), chi.URLParam(r, "datasetID"), chi.URLParam(r, "tableID"))
	if err != nil {
		h.fail(w, r, "table_schema", err)
		return
	}
	h.text(w, r, "table_schema", render.TableSchema(res))
}

// Search finds tables by name within a dataset
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.ops.SearchTables(r.Context(), sessionID(r), chi.URLParam(r, "datasetID"), r.URL.Query().Get("term"))
	if err != nil {
		h.fail(w, r, "search_tables", err)
		return
	}
	h.text(w, r, "search_tables", render.Search(res))
}

// Query runs a read-only raw query for super admins
func (h *SessionHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, r, "Invalid request body")
		return
	}

	res, err := h.ops.RawQuery(r.Context(), sessionID(r), req.SQL)
	if err != nil {
		h.fail(w, r, "raw_query", err)
		return
	}
	h.text(w, r, "raw_query", render.Rows(res))
}

func (h *SessionHandler) text(w http.ResponseWriter, r *http.Request, operation, text string) {
	response.Text(w, text, meta(r, operation))
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Operation failed",
			zap.String("operation", operation),
			zap.String("session_id", sessionID(r)),
			zap.Error(err))
	}
	response.ErrorWithCode(w, codeFor(err), render.Error(err), status, meta(r, operation))
}

func (h *SessionHandler) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.ErrorWithCode(w, "invalid_request", message, http.StatusBadRequest, meta(r, ""))
}

// StatusFor maps an operation error to an HTTP status
func StatusFor(err error) int {
	if errors.Is(err, session.ErrInvalidSession) {
		return http.StatusBadRequest
	}

	switch apperr.KindOf(err) {
	case apperr.KindUserNotFound, apperr.KindNotAuthenticated:
		return http.StatusUnauthorized
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	case apperr.KindInvalidFilter:
		return http.StatusBadRequest
	case apperr.KindBackend:
		var se *datasource.StoreError
		if errors.As(err, &se) && se.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	if errors.Is(err, session.ErrInvalidSession) {
		return "invalid_session"
	}
	return string(apperr.KindOf(err))
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func meta(r *http.Request, operation string) *response.Meta {
	return &response.Meta{
		RequestID: middleware.GetReqID(r.Context()),
		Operation: operation,
	}
}
