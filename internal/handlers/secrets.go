package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/swapnilsubhashpatil/Secrets/internal/middleware"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/internal/services"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

// SecretsService defines the interface for owner-scoped secret operations.
type SecretsService interface {
	List(ctx context.Context, userID uuid.UUID, page utils.Page) ([]models.Secret, error)
	Submit(ctx context.Context, userID uuid.UUID, secretID *uuid.UUID, content string) (*models.Secret, error)
	Delete(ctx context.Context, userID, secretID uuid.UUID) error
}

// SecretHandler handles the secret CRUD endpoints. All routes sit behind the
// session gate; the owner identity comes from the request context, never
// from the payload.
type SecretHandler struct {
	secrets SecretsService
}

// NewSecretHandler creates a new secret handler.
func NewSecretHandler(secrets SecretsService) *SecretHandler {
	return &SecretHandler{secrets: secrets}
}

// submitRequest is the JSON body for the create-or-update endpoint.
// SecretID present means update; absent means create.
type submitRequest struct {
	SecretID *uuid.UUID `json:"secretId,omitempty"`
	Secret   string     `json:"secret"`
}

// deleteRequest is the JSON body for the delete endpoint.
type deleteRequest struct {
	SecretID uuid.UUID `json:"secretId"`
}

// listResponse is the JSON body for the listing endpoint.
type listResponse struct {
	Success bool            `json:"success"`
	Secrets []models.Secret `json:"secrets"`
}

// List returns the caller's secrets, newest first.
// An account with no secrets gets an empty array, not an error.
//
// Optional query parameters:
//   - limit: page size (default 100, max 500)
//   - offset: number of records to skip
//
// Responses:
//   - 200: {"success": true, "secrets": [{"secret_id": "...", "secret": "...", "created_at": "..."}]}
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	secrets, err := h.secrets.List(r.Context(), userID, utils.ParsePage(r))
	if err != nil {
		middleware.RecordSecretOperation("list", "error")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to list secrets")
		return
	}

	middleware.RecordSecretOperation("list", "success")
	utils.RespondWithJSON(w, r, http.StatusOK, listResponse{Success: true, Secrets: secrets})
}

// Submit creates a new secret or replaces an existing one's content.
// The single endpoint serves the front end's one submission form: a body
// with secretId is an update, a body without one is a create.
//
// Request:
//
//	POST /api/submit
//	{"secret": "hello"}                          // create
//	{"secretId": "...", "secret": "updated"}     // update
//
// Responses:
//   - 200: {"success": true, "secret": {...}} for updates
//   - 201: {"success": true, "secret": {...}} for creates
//   - 400: Malformed body or empty/whitespace-only secret
//   - 404: Updating a secret that does not exist or is not the caller's;
//     the two cases are indistinguishable
func (h *SecretHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	operation := "create"
	if req.SecretID != nil {
		operation = "update"
	}

	secret, err := h.secrets.Submit(r.Context(), userID, req.SecretID, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySecret):
			middleware.RecordSecretOperation(operation, "invalid")
			utils.RespondWithError(w, r, http.StatusBadRequest, "Secret cannot be empty")
		case errors.Is(err, services.ErrSecretNotFound):
			middleware.RecordSecretOperation(operation, "not_found")
			utils.RespondWithError(w, r, http.StatusNotFound, "Secret not found")
		default:
			middleware.RecordSecretOperation(operation, "error")
			utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to save secret")
		}
		return
	}

	middleware.RecordSecretOperation(operation, "success")

	status := http.StatusOK
	if req.SecretID == nil {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, r, status, map[string]interface{}{
		"success": true,
		"secret":  secret,
	})
}

// Delete removes one of the caller's secrets.
//
// Request:
//
//	POST /api/secrets/delete
//	{"secretId": "..."}
//
// Responses:
//   - 200: {"success": true}
//   - 400: Malformed body or missing secretId
//   - 404: Secret does not exist or is not the caller's
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SecretID == uuid.Nil {
		utils.RespondWithError(w, r, http.StatusBadRequest, "secretId is required")
		return
	}

	if err := h.secrets.Delete(r.Context(), userID, req.SecretID); err != nil {
		if errors.Is(err, services.ErrSecretNotFound) {
			middleware.RecordSecretOperation("delete", "not_found")
			utils.RespondWithError(w, r, http.StatusNotFound, "Secret not found")
			return
		}
		middleware.RecordSecretOperation("delete", "error")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete secret")
		return
	}

	middleware.RecordSecretOperation("delete", "success")
	utils.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
