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

type RouteHandler struct {
	routeService RouteServiceInterface
}

func NewRouteHandler(routeService RouteServiceInterface) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

func (h *RouteHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateRouteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	route, err := h.routeService.Create(c.Request.Context(), userID, req.Channel, req.RecipientEmails)
	if err != nil {
		if respondFieldErrors(c, err) {
			return
		}
		c.InternalServerError("failed to create route")
		return
	}

	_ = c.JSON(201, routeResponse(route))
}

func (h *RouteHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	routes, err := h.routeService.List(c.Request.Context(), userID)
	if err != nil {
		c.InternalServerError("failed to list routes")
		return
	}

	response := make([]dto.RouteResponse, 0, len(routes))
	for _, r := range routes {
		response = append(response, routeResponse(&r))
	}

	_ = c.JSON(200, response)
}

func (h *RouteHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		c.BadRequest("invalid route id")
		return
	}

	route, err := h.routeService.GetByID(c.Request.Context(), routeID, userID)
	if err != nil {
		if errors.Is(err, services.ErrRouteNotFound) {
			c.NotFound("route not found")
			return
		}
		c.InternalServerError("failed to get route")
		return
	}

	_ = c.JSON(200, routeResponse(route))
}

func (h *RouteHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		c.BadRequest("invalid route id")
		return
	}

	var req dto.UpdateRouteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	route, err := h.routeService.Update(c.Request.Context(), routeID, userID, req.Channel, req.RecipientEmails, req.IsActive)
	if err != nil {
		if errors.Is(err, services.ErrRouteNotFound) {
			c.NotFound("route not found")
			return
		}
		if respondFieldErrors(c, err) {
			return
		}
		c.InternalServerError("failed to update route")
		return
	}

	_ = c.JSON(200, routeResponse(route))
}

func (h *RouteHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	routeID, err := uuid.Parse(c.Param("routeId"))
	if err != nil {
		c.BadRequest("invalid route id")
		return
	}

	if err := h.routeService.Delete(c.Request.Context(), routeID, userID); err != nil {
		if errors.Is(err, services.ErrRouteNotFound) {
			c.NotFound("route not found")
			return
		}
		c.InternalServerError("failed to delete route")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "route deleted"})
}

func routeResponse(r *models.Route) dto.RouteResponse {
	return dto.RouteResponse{
		ID:              r.ID,
		Channel:         r.Channel,
		IsActive:        r.IsActive,
		RecipientEmails: r.RecipientEmails,
		CreatedAt:       formatTime(r.CreatedAt),
	}
}
