package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
	"github.com/LeventeLantos/sms-dispatch/internal/service"
)

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(s *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: s}
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context(), repo.ContactFilter{
		Type:       model.ContactType(c.Query("type")),
		ActiveOnly: activeOnly(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "contacts": contacts})
}

func (h *ContactHandler) Create(c *gin.Context) {
	var in service.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"success": true, "contact": contact})
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "contact": contact})
}

func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in service.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "contact": contact})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.contacts.Deactivate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "message": "Contact deactivated successfully"})
}
