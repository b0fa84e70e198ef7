package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/model"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
	"github.com/LeventeLantos/sms-dispatch/internal/service"
)

type GroupHandler struct {
	groups *service.GroupService
}

func NewGroupHandler(s *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: s}
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context(), repo.GroupFilter{
		Type:       model.GroupType(c.Query("type")),
		ActiveOnly: activeOnly(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "groups": groups})
}

func (h *GroupHandler) Create(c *gin.Context) {
	var in service.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g, err := h.groups.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"success": true, "group": g})
}

func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	g, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "group": g})
}

func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in service.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g, err := h.groups.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "group": g})
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.Deactivate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "message": "Group deactivated successfully"})
}

func (h *GroupHandler) Members(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	members, err := h.groups.Members(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "contacts": members})
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ContactID int64 `json:"contact_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ContactID == 0 {
		writeFailure(c, http.StatusBadRequest, "contact_id is required")
		return
	}

	g, contact, err := h.groups.AddMember(c.Request.Context(), groupID, req.ContactID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Contact %s added to group %s", contact.Name, g.Name),
	})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	contactID, ok := idParam(c, "contactId")
	if !ok {
		return
	}

	g, contact, err := h.groups.RemoveMember(c.Request.Context(), groupID, contactID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Contact %s removed from group %s", contact.Name, g.Name),
	})
}
