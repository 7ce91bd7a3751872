package handlers

import (
	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UsageHandler struct {
	usageService UsageServiceInterface
}

func NewUsageHandler(usageService UsageServiceInterface) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Get returns the caller's usage counters, creating the row on first read.
func (h *UsageHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	usage, err := h.usageService.Get(c.Request.Context(), userID)
	if err != nil {
		c.InternalServerError("failed to get usage")
		return
	}

	_ = c.JSON(200, dto.UsageResponse{
		TotalRequests: usage.TotalRequests,
		RequestsToday: usage.RequestsToday,
		LastRequestAt: formatTimePtr(usage.LastRequestAt),
	})
}
