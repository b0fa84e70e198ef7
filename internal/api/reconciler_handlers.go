package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/scheduler"
)

// ReconcilerHandler controls the status reconciliation sweep. A nil
// scheduler means the sweep is disabled.
type ReconcilerHandler struct {
	sched *scheduler.Scheduler
}

func NewReconcilerHandler(s *scheduler.Scheduler) *ReconcilerHandler {
	return &ReconcilerHandler{sched: s}
}

func (h *ReconcilerHandler) Status(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "reconciler": h.sched.Snapshot()})
}

func (h *ReconcilerHandler) Start(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	started := h.sched.Start()
	writeJSON(c, http.StatusOK, gin.H{"success": true, "changed": started, "reconciler": h.sched.Snapshot()})
}

func (h *ReconcilerHandler) Stop(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	stopped := h.sched.Stop()
	writeJSON(c, http.StatusOK, gin.H{"success": true, "changed": stopped, "reconciler": h.sched.Snapshot()})
}

func (h *ReconcilerHandler) enabled(c *gin.Context) bool {
	if h.sched == nil {
		writeFailure(c, http.StatusNotFound, "reconciler is disabled")
		return false
	}
	return true
}
