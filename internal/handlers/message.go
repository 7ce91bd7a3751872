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

// MessageHandler exposes the ledger read-only; rows are written by the
// pipeline alone.
type MessageHandler struct {
	messageService MessageServiceInterface
}

func NewMessageHandler(messageService MessageServiceInterface) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	messages, err := h.messageService.List(c.Request.Context(), userID, c.QueryParam("search"))
	if err != nil {
		c.InternalServerError("failed to list messages")
		return
	}

	response := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, messageResponse(&m))
	}

	_ = c.JSON(200, response)
}

func (h *MessageHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.BadRequest("invalid message id")
		return
	}

	message, err := h.messageService.GetByID(c.Request.Context(), messageID, userID)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			c.NotFound("message not found")
			return
		}
		c.InternalServerError("failed to get message")
		return
	}

	_ = c.JSON(200, messageResponse(message))
}

func messageResponse(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:              m.ID,
		APIKeyID:        m.APIKeyID,
		RecipientEmails: m.RecipientEmails,
		VisitorEmail:    m.VisitorEmail,
		Subject:         m.Subject,
		Body:            m.Body,
		Status:          m.Status,
		Error:           m.Error,
		ImageURL:        m.ImageURL,
		AcceptedAt:      formatTime(m.AcceptedAt),
		SentAt:          formatTimePtr(m.SentAt),
	}
}
