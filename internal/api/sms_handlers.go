package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/apperr"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SMSOptions struct {
	FromNumber       string
	MessageMaxLength int
}

type SMSHandler struct {
	dispatcher *service.Dispatcher
	history    *service.History
	templates  *service.TemplateService
	db         Pinger
	opts       SMSOptions
	log        *logger.Logger
}

func NewSMSHandler(d *service.Dispatcher, h *service.History, t *service.TemplateService, db Pinger, opts SMSOptions, log *logger.Logger) *SMSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SMSHandler{
		dispatcher: d,
		history:    h,
		templates:  t,
		db:         db,
		opts:       opts,
		log:        log.With("handler", "SMSHandler"),
	}
}

type messageFields struct {
	Message      string         `json:"message"`
	TemplateID   *int64         `json:"template_id"`
	TemplateData map[string]any `json:"template_data"`
}

type sendRequest struct {
	To string `json:"to"`
	messageFields
}

type bulkRequest struct {
	To []string `json:"to"`
	messageFields
}

func (h *SMSHandler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Error("health check failed", "error", err)
		writeJSON(c, http.StatusServiceUnavailable, gin.H{
			"success": false,
			"status":  "unhealthy",
			"error":   err.Error(),
		})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"success":   true,
		"status":    "healthy",
		"service":   "sms-dispatch",
		"provider":  h.dispatcher.ProviderName(),
		"timestamp": time.Now().UTC(),
	})
}

func (h *SMSHandler) Overview(c *gin.Context) {
	o, err := h.history.Overview(c.Request.Context(), h.opts.FromNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "status": o})
}

func (h *SMSHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.To == "" {
		writeFailure(c, http.StatusBadRequest, "Phone number (to) is required")
		return
	}
	body, err := h.messageBody(c.Request.Context(), req.messageFields)
	if err != nil {
		writeError(c, err)
		return
	}

	res := h.dispatcher.Send(c.Request.Context(), req.To, body, req.TemplateData)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(c, status, res)
}

func (h *SMSHandler) SendBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.To) == 0 {
		writeFailure(c, http.StatusBadRequest, "Phone numbers list (to) is required")
		return
	}
	body, err := h.messageBody(c.Request.Context(), req.messageFields)
	if err != nil {
		writeError(c, err)
		return
	}

	res := h.dispatcher.SendBulk(c.Request.Context(), req.To, body, req.TemplateData)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusMultiStatus
	}
	writeJSON(c, status, res)
}

func (h *SMSHandler) SendGroup(c *gin.Context) {
	groupID, ok := idParam(c, "groupId")
	if !ok {
		return
	}
	var req messageFields
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	body, err := h.messageBody(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	res := h.dispatcher.SendGroup(c.Request.Context(), groupID, body, req.TemplateData)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(c, status, res)
}

func (h *SMSHandler) History(c *gin.Context) {
	q := service.HistoryQuery{
		Limit:  parseInt(c.Query("limit"), 100),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if raw := c.Query("contact_type"); raw != "" {
		ct := model.ContactType(raw)
		if !ct.Valid() {
			writeFailure(c, http.StatusBadRequest, fmt.Sprintf("contact_type must be one of %s, %s", model.Client, model.Employee))
			return
		}
		q.ContactType = ct
	}

	page := h.history.History(c.Request.Context(), q)
	status := http.StatusOK
	if !page.Success {
		status = http.StatusBadRequest
	}
	writeJSON(c, status, page)
}

func (h *SMSHandler) Status(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.history.Status(c.Request.Context(), id)
	switch {
	case res.Success:
		writeJSON(c, http.StatusOK, res)
	case res.NotFound:
		writeJSON(c, http.StatusNotFound, res)
	default:
		writeJSON(c, http.StatusInternalServerError, res)
	}
}

// messageBody picks the literal message or the named template and enforces
// the length limit.
func (h *SMSHandler) messageBody(ctx context.Context, f messageFields) (string, error) {
	body := f.Message
	if body == "" && f.TemplateID != nil {
		b, err := h.templates.Body(ctx, *f.TemplateID)
		if err != nil {
			return "", err
		}
		body = b
	}
	if body == "" {
		return "", apperr.Validation("Message content is required")
	}
	if limit := h.opts.MessageMaxLength; limit > 0 && utf8.RuneCountInString(body) > limit {
		return "", apperr.Validation(fmt.Sprintf("Message exceeds %d characters", limit))
	}
	return body, nil
}
