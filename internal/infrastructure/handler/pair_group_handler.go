// Package handler exposes the pair group service over HTTP
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/pair-group-store/internal/application/service"
	"github.com/damon-houk/pair-group-store/internal/domain/repository"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/damon-houk/pair-group-store/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// PairGroupHandler handles HTTP requests for pair groups
type PairGroupHandler struct {
	service *service.PairGroupService
	logger  logger.Logger
}

// NewPairGroupHandler creates a new pair group handler
func NewPairGroupHandler(service *service.PairGroupService, log logger.Logger) *PairGroupHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PairGroupHandler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes registers the pair group routes
func (h *PairGroupHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/pair-groups", h.ListPairGroups).Methods("GET")
	router.HandleFunc("/pair-groups", h.CreatePairGroup).Methods("POST")
	router.HandleFunc("/pair-groups/{id}", h.GetPairGroup).Methods("GET")
	router.HandleFunc("/pair-groups/{id}", h.DeletePairGroup).Methods("DELETE")
	router.HandleFunc("/pair-groups/{id}/pin", h.SetPinned).Methods("PUT")
	router.HandleFunc("/pair-groups/{id}/pairs", h.AddPair).Methods("POST")
	router.HandleFunc("/pair-groups/{id}/pairs/{pairId}", h.UpdatePairValue).Methods("PUT")
	router.HandleFunc("/pair-groups/{id}/pairs/{pairId}", h.RemovePair).Methods("DELETE")

	h.logger.Info("Pair group routes registered", map[string]interface{}{
		"routes": []string{
			"GET /pair-groups",
			"POST /pair-groups",
			"GET /pair-groups/{id}",
			"DELETE /pair-groups/{id}",
			"PUT /pair-groups/{id}/pin",
			"POST /pair-groups/{id}/pairs",
			"PUT /pair-groups/{id}/pairs/{pairId}",
			"DELETE /pair-groups/{id}/pairs/{pairId}",
		},
	})
}

// ListPairGroups handles GET /pair-groups
func (h *PairGroupHandler) ListPairGroups(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	groups, err := h.service.ListPairGroups(r.Context())
	if err != nil {
		h.sendServiceError(w, err, "listing pair groups", requestID)
		return
	}

	h.logger.Debug("Pair groups listed", map[string]interface{}{
		"request_id": requestID,
		"count":      len(groups),
	})

	sendJSON(w, http.StatusOK, PairGroupListResponse{PairGroups: groups})
}

// CreatePairGroup handles POST /pair-groups
func (h *PairGroupHandler) CreatePairGroup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreatePairGroupRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendInvalidBody(w, err, requestID)
			return
		}
	}

	group, err := h.service.CreatePairGroup(r.Context(), req.IsPinned)
	if err != nil {
		h.sendServiceError(w, err, "creating the pair group", requestID)
		return
	}

	sendJSON(w, http.StatusCreated, group)
}

// GetPairGroup handles GET /pair-groups/{id}
func (h *PairGroupHandler) GetPairGroup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	group, err := h.service.GetPairGroup(r.Context(), id)
	if err != nil {
		h.sendServiceError(w, err, "retrieving the pair group", requestID)
		return
	}

	sendJSON(w, http.StatusOK, group)
}

// DeletePairGroup handles DELETE /pair-groups/{id}
func (h *PairGroupHandler) DeletePairGroup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.service.DeletePairGroup(r.Context(), id); err != nil {
		h.sendServiceError(w, err, "deleting the pair group", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPinned handles PUT /pair-groups/{id}/pin
func (h *PairGroupHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	var req SetPinnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendInvalidBody(w, err, requestID)
		return
	}
	if req.IsPinned == nil {
		sendErrorResponse(w, h.logger, "Missing is_pinned",
			"The request body must set is_pinned", http.StatusBadRequest, requestID)
		return
	}

	group, err := h.service.SetPinned(r.Context(), id, *req.IsPinned)
	if err != nil {
		h.sendServiceError(w, err, "pinning the pair group", requestID)
		return
	}

	sendJSON(w, http.StatusOK, group)
}

// AddPair handles POST /pair-groups/{id}/pairs
func (h *PairGroupHandler) AddPair(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	var req AddPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendInvalidBody(w, err, requestID)
		return
	}
	if req.Value == nil {
		sendErrorResponse(w, h.logger, "Missing value",
			"The request body must set value", http.StatusBadRequest, requestID)
		return
	}

	pair, err := h.service.AddPair(r.Context(), id, req.Base, req.Comparison, *req.Value)
	if err != nil {
		h.sendServiceError(w, err, "adding the pair", requestID)
		return
	}

	sendJSON(w, http.StatusCreated, pair)
}

// UpdatePairValue handles PUT /pair-groups/{id}/pairs/{pairId}
func (h *PairGroupHandler) UpdatePairValue(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)

	var req UpdatePairValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendInvalidBody(w, err, requestID)
		return
	}
	if req.Value == nil {
		sendErrorResponse(w, h.logger, "Missing value",
			"The request body must set value", http.StatusBadRequest, requestID)
		return
	}

	pair, err := h.service.UpdatePairValue(r.Context(), vars["id"], vars["pairId"], *req.Value)
	if err != nil {
		h.sendServiceError(w, err, "updating the pair", requestID)
		return
	}

	sendJSON(w, http.StatusOK, pair)
}

// RemovePair handles DELETE /pair-groups/{id}/pairs/{pairId}
func (h *PairGroupHandler) RemovePair(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)

	if err := h.service.RemovePair(r.Context(), vars["id"], vars["pairId"]); err != nil {
		h.sendServiceError(w, err, "removing the pair", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PairGroupHandler) sendInvalidBody(w http.ResponseWriter, err error, requestID string) {
	h.logger.Warn("Invalid request body", map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, "Invalid request body",
		"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
}

// sendServiceError maps service and repository errors to HTTP responses
func (h *PairGroupHandler) sendServiceError(w http.ResponseWriter, err error, action, requestID string) {
	fields := map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	}

	switch {
	case errors.Is(err, repository.ErrPairGroupNotFound):
		h.logger.Warn("Pair group not found", fields)
		sendErrorResponse(w, h.logger, "Pair group not found",
			"The requested pair group could not be found", http.StatusNotFound, requestID)
	case errors.Is(err, repository.ErrPairNotFound):
		h.logger.Warn("Pair not found", fields)
		sendErrorResponse(w, h.logger, "Pair not found",
			"The requested pair is not part of the pair group", http.StatusNotFound, requestID)
	case errors.Is(err, repository.ErrPairGroupExists):
		h.logger.Warn("Pair group already exists", fields)
		sendErrorResponse(w, h.logger, "Pair group already exists",
			"A pair group with this id already exists", http.StatusConflict, requestID)
	case errors.Is(err, service.ErrInvalidPair):
		h.logger.Warn("Invalid pair", fields)
		sendErrorResponse(w, h.logger, "Invalid pair", err.Error(), http.StatusBadRequest, requestID)
	default:
		h.logger.Error("Unexpected error while "+action, fields)
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while "+action, http.StatusInternalServerError, requestID)
	}
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}
