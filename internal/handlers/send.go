package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const maxMultipartMemory = 8 << 20

// SendHandler is the public intake endpoint gated by API-key auth and the
// per-key rate limit. Form posts and JSON bodies are both accepted so
// static HTML forms can target it directly.
type SendHandler struct {
	deliveryService DeliveryServiceInterface
}

func NewSendHandler(deliveryService DeliveryServiceInterface) *SendHandler {
	return &SendHandler{deliveryService: deliveryService}
}

func (h *SendHandler) Send(c *drift.Context) {
	user := middleware.GetAPIKeyUser(c)
	key := middleware.GetAPIKey(c)
	if user == nil || key == nil {
		c.Unauthorized("not authenticated")
		return
	}

	sub, err := h.parseSubmission(c)
	if err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if closer, ok := sub.Attachment.(io.Closer); ok {
		defer closer.Close()
	}

	msg, err := h.deliveryService.Deliver(c.Request.Context(), user, key, sub)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveRoute) {
			c.Forbidden("no active email route for this api key")
			return
		}
		if respondFieldErrors(c, err) {
			return
		}

		var txErr *services.TransmissionError
		if errors.As(err, &txErr) {
			// The failure is on the ledger; surface it rather than
			// pretending the mail went out.
			_ = c.JSON(500, dto.SendResponse{
				Detail:       "Message delivery failed",
				APIKeyPrefix: key.Prefix,
				MessageID:    txErr.Message.ID.String(),
				Status:       txErr.Message.Status,
			})
			return
		}

		c.InternalServerError("an unexpected error occurred")
		return
	}

	_ = c.JSON(200, dto.SendResponse{
		Detail:       "Message sent successfully.",
		APIKeyPrefix: key.Prefix,
		MessageID:    msg.ID.String(),
		Status:       msg.Status,
	})
}

func (h *SendHandler) parseSubmission(c *drift.Context) (*services.Submission, error) {
	contentType := c.GetHeader("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return parseMultipartSubmission(c)
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return parseFormSubmission(c)
	default:
		return parseJSONSubmission(c)
	}
}

func parseJSONSubmission(c *drift.Context) (*services.Submission, error) {
	var req dto.SendRequest
	if err := c.BindJSON(&req); err != nil {
		return nil, err
	}
	return &services.Submission{
		VisitorEmail: req.VisitorEmail,
		Subject:      req.Subject,
		Body:         req.Body,
		ImageURL:     req.ImageURL,
		Honeypot:     req.Website,
	}, nil
}

func parseFormSubmission(c *drift.Context) (*services.Submission, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return formSubmission(c)
}

func parseMultipartSubmission(c *drift.Context) (*services.Submission, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}

	sub, err := formSubmission(c)
	if err != nil {
		return nil, err
	}

	file, header, err := c.Request.FormFile("attachments")
	if err == nil {
		sub.Attachment = file
		sub.AttachmentName = header.Filename
		sub.AttachmentSize = header.Size
	}
	return sub, nil
}

func formSubmission(c *drift.Context) (*services.Submission, error) {
	// form bodies arrive as plain text; the pipeline wraps them into a
	// structured single-field form
	var body json.RawMessage
	if v := c.Request.FormValue("body"); v != "" {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = encoded
	}

	return &services.Submission{
		VisitorEmail: c.Request.FormValue("visitor_email"),
		Subject:      c.Request.FormValue("subject"),
		Body:         body,
		ImageURL:     c.Request.FormValue("image_url"),
		Honeypot:     c.Request.FormValue("website"),
	}, nil
}
