package ccipreadhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ruteri/ccip-read-gateway/api"
	"github.com/ruteri/ccip-read-gateway/interfaces"
)

// maxBodyBytes bounds the POST /resolve body.
const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request id in responses.
const RequestIDHeader = "X-Request-Id"

// RequestResolver runs a CCIP-Read request given its raw sender and data parameters.
// It is implemented by *gateway.Gateway.
type RequestResolver interface {
	Handle(ctx context.Context, sender, data string) ([]byte, error)
}

// Handler processes CCIP-Read HTTP requests.
type Handler struct {
	gateway RequestResolver
	log     *slog.Logger
}

// NewHandler creates a new HTTP request handler resolving through gateway.
func NewHandler(gateway RequestResolver, log *slog.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		log:     log,
	}
}

// RegisterRoutes configures the router with the CCIP-Read endpoints:
//   - GET /resolve/{sender}/{data}
//   - POST /resolve/{sender}/{data}
//   - POST /resolve
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/resolve/{sender}/{data}", h.HandleResolve)
	r.Post("/resolve/{sender}/{data}", h.HandleResolve)
	r.Post("/resolve", h.HandleResolveBody)
}

// HandleResolve processes a lookup whose sender and calldata are in the path.
//
// URL format: GET|POST /resolve/{sender}/{data}
//
// Response: JSON-encoded api.ResolveResponse
//
// Status codes:
//   - 200 OK: Signed response returned
//   - 400 Bad Request: Invalid sender or data, or undecodable calldata
//   - 502 Bad Gateway: The authoritative chain call failed
//   - 500 Internal Server Error: Signing or encoding failed
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.PathValue("sender"), r.PathValue("data"))
}

// HandleResolveBody processes a lookup posted as an api.ResolveRequest body.
//
// URL format: POST /resolve
//
// Status codes are the same as for HandleResolve. A body that is not valid
// JSON is rejected with 400 Bad Request.
func (h *Handler) HandleResolveBody(w http.ResponseWriter, r *http.Request) {
	var body api.ResolveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&body); err != nil {
		h.log.Info("Invalid request body", "err", err)
		writeJSON(w, http.StatusBadRequest, &api.ErrorResponse{
			Message: "Invalid request body",
			Error: &api.ErrorDetail{
				Code:   "INVALID_REQUEST",
				Field:  "body",
				Reason: err.Error(),
			},
		})
		return
	}

	h.resolve(w, r, body.Sender, body.Data)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, sender, data string) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)
	log := h.log.With("requestID", requestID)

	response, err := h.gateway.Handle(r.Context(), sender, data)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("Failed to resolve", "err", err, "sender", sender, "status", status)
		} else {
			log.Info("Rejected resolve request", "err", err, "sender", sender, "status", status)
		}
		writeJSON(w, status, body)
		return
	}

	log.Debug("Resolved", "sender", sender, "responseBytes", len(response))
	writeJSON(w, http.StatusOK, &api.ResolveResponse{Data: hexutil.Encode(response)})
}

// errorResponse maps a gateway error to its status code and body.
// Messages of server-side failures are not echoed to the client.
func errorResponse(err error) (int, *api.ErrorResponse) {
	var validationErr *interfaces.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, &api.ErrorResponse{
			Message: validationErr.Error(),
			Error: &api.ErrorDetail{
				Code:   "INVALID_REQUEST",
				Field:  validationErr.Field,
				Reason: validationErr.Reason,
			},
		}
	case errors.Is(err, interfaces.ErrInvalidRequest):
		return http.StatusBadRequest, &api.ErrorResponse{
			Message: err.Error(),
			Error:   &api.ErrorDetail{Code: "INVALID_REQUEST"},
		}
	case errors.Is(err, interfaces.ErrMalformedEncoding):
		return http.StatusBadRequest, &api.ErrorResponse{
			Message: "Malformed calldata",
			Error: &api.ErrorDetail{
				Code:   "MALFORMED_ENCODING",
				Field:  "data",
				Reason: err.Error(),
			},
		}
	case errors.Is(err, interfaces.ErrUpstreamCall):
		return http.StatusBadGateway, &api.ErrorResponse{
			Message: "Authoritative chain call failed",
			Error:   &api.ErrorDetail{Code: "UPSTREAM_CALL_FAILED"},
		}
	default:
		return http.StatusInternalServerError, &api.ErrorResponse{
			Message: "Internal server error",
			Error:   &api.ErrorDetail{Code: "INTERNAL_ERROR"},
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
