package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeventeLantos/sms-dispatch/internal/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	SMS        *SMSHandler
	Reconciler *ReconcilerHandler
	Contacts   *ContactHandler
	Groups     *GroupHandler
	Templates  *TemplateHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.CORSOrigins))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "sms-dispatch")
	})

	api := r.Group("/api")
	{
		if cfg.SMS != nil {
			api.GET("/sms/health", cfg.SMS.Health)
			api.GET("/sms/status", cfg.SMS.Overview)
			api.POST("/sms/send", cfg.SMS.Send)
			api.POST("/sms/send/bulk", cfg.SMS.SendBulk)
			api.POST("/sms/send/group/:groupId", cfg.SMS.SendGroup)
			api.GET("/sms/history", cfg.SMS.History)
			api.GET("/sms/status/:id", cfg.SMS.Status)
		}

		if cfg.Reconciler != nil {
			api.GET("/sms/reconciler", cfg.Reconciler.Status)
			api.POST("/sms/reconciler/start", cfg.Reconciler.Start)
			api.POST("/sms/reconciler/stop", cfg.Reconciler.Stop)
		}

		if cfg.Contacts != nil {
			api.GET("/contacts", cfg.Contacts.List)
			api.POST("/contacts", cfg.Contacts.Create)
			api.GET("/contacts/:id", cfg.Contacts.Get)
			api.PUT("/contacts/:id", cfg.Contacts.Update)
			api.DELETE("/contacts/:id", cfg.Contacts.Delete)
		}

		if cfg.Groups != nil {
			api.GET("/groups", cfg.Groups.List)
			api.POST("/groups", cfg.Groups.Create)
			api.GET("/groups/:id", cfg.Groups.Get)
			api.PUT("/groups/:id", cfg.Groups.Update)
			api.DELETE("/groups/:id", cfg.Groups.Delete)
			api.GET("/groups/:id/members", cfg.Groups.Members)
			api.POST("/groups/:id/members", cfg.Groups.AddMember)
			api.DELETE("/groups/:id/members/:contactId", cfg.Groups.RemoveMember)
		}

		if cfg.Templates != nil {
			api.GET("/templates", cfg.Templates.List)
			api.POST("/templates", cfg.Templates.Create)
			api.GET("/templates/:id", cfg.Templates.Get)
		}
	}

	return r
}
