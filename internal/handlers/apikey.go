package handlers

import (
	"errors"

	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
	routeService  RouteServiceInterface
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface, routeService RouteServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
		routeService:  routeService,
	}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RouteID == uuid.Nil {
		c.BadRequest("no route selected for this api key")
		return
	}

	// the route must belong to the caller
	route, err := h.routeService.GetByID(c.Request.Context(), req.RouteID, userID)
	if err != nil {
		if errors.Is(err, services.ErrRouteNotFound) {
			c.NotFound("route not found")
			return
		}
		c.InternalServerError("failed to look up route")
		return
	}

	key, rawKey, err := h.apiKeyService.Issue(c.Request.Context(), userID, route.ID)
	if err != nil {
		if errors.Is(err, services.ErrRouteHasActiveKey) {
			c.BadRequest("this route still has an active api key, use it or revoke it first")
			return
		}
		c.InternalServerError("failed to create api key")
		return
	}

	_ = c.JSON(201, dto.APIKeyCreatedResponse{
		ID:        key.ID,
		Key:       rawKey,
		Prefix:    key.Prefix,
		IsActive:  key.IsActive,
		RouteID:   key.RouteID,
		CreatedAt: formatTime(key.CreatedAt),
	})
}

func (h *APIKeyHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keys, err := h.apiKeyService.List(c.Request.Context(), userID, c.QueryParam("search"))
	if err != nil {
		c.InternalServerError("failed to list api keys")
		return
	}

	response := make([]dto.APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, apiKeyResponse(&k))
	}

	_ = c.JSON(200, response)
}

func (h *APIKeyHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	key, err := h.apiKeyService.GetByID(c.Request.Context(), keyID, userID)
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to get api key")
		return
	}

	_ = c.JSON(200, apiKeyResponse(key))
}

// Revoke disables a key. Revoking an already-revoked key succeeds with
// the same end state.
func (h *APIKeyHandler) Revoke(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	key, err := h.apiKeyService.Revoke(c.Request.Context(), keyID, userID)
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to revoke api key")
		return
	}

	_ = c.JSON(200, apiKeyResponse(key))
}

func apiKeyResponse(k *models.APIKey) dto.APIKeyResponse {
	return dto.APIKeyResponse{
		ID:         k.ID,
		Prefix:     k.Prefix,
		IsActive:   k.IsActive,
		RouteID:    k.RouteID,
		UsageCount: k.UsageCount,
		LastUsedAt: formatTimePtr(k.LastUsedAt),
		RevokedAt:  formatTimePtr(k.RevokedAt),
		CreatedAt:  formatTime(k.CreatedAt),
	}
}
