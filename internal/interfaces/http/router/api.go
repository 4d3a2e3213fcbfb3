package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/interfaces/http/handler"
	"github.com/ngo-pm/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by RegisterAPI. Delivery may be nil
// when notifications are sent inline and there is no outbox to administer.
type Handlers struct {
	Auth         *handler.AuthHandler
	Organization *handler.OrganizationHandler
	Member       *handler.MemberHandler
	Project      *handler.ProjectHandler
	Report       *handler.ReportHandler
	Deadline     *handler.DeadlineHandler
	Delivery     *handler.DeliveryHandler
}

// Guards are the middleware placed in front of the API groups
type Guards struct {
	// Auth authenticates the caller. Required.
	Auth gin.HandlerFunc
	// PublicLimit throttles the unauthenticated endpoints. Optional.
	PublicLimit gin.HandlerFunc
}

// RegisterAPI registers every API domain group on r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	public := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if g.PublicLimit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{g.PublicLimit, fn}
	}
	admin := middleware.RequireAdmin()

	authRoutes := NewDomainGroup("/auth")
	authRoutes.POST("/login", public(h.Auth.Login)...)
	authRoutes.POST("/refresh", public(h.Auth.Refresh)...)
	authRoutes.POST("/logout", g.Auth, h.Auth.Logout)
	authRoutes.GET("/me", g.Auth, h.Auth.Me)
	r.Register(authRoutes)

	orgRoutes := NewDomainGroup("/organizations")
	orgRoutes.POST("", public(h.Organization.Register)...)
	orgRoutes.GET("/current", g.Auth, h.Organization.Current)
	r.Register(orgRoutes)

	memberRoutes := NewDomainGroup("/members").Use(g.Auth)
	memberRoutes.GET("", h.Member.List)
	memberRoutes.PUT("/me/password", h.Member.ChangePassword)
	memberRoutes.GET("/:id", h.Member.Get)
	memberRoutes.POST("", admin, h.Member.Add)
	memberRoutes.PUT("/:id/role", admin, h.Member.ChangeRole)
	memberRoutes.POST("/:id/deactivate", admin, h.Member.Deactivate)
	memberRoutes.POST("/:id/activate", admin, h.Member.Activate)
	r.Register(memberRoutes)

	projectRoutes := NewDomainGroup("/projects").Use(g.Auth)
	projectRoutes.GET("", h.Project.List)
	projectRoutes.GET("/:id", h.Project.Get)
	projectRoutes.GET("/:id/deadline-status", h.Project.DeadlineStatus)
	projectRoutes.POST("", admin, h.Project.Create)
	projectRoutes.PATCH("/:id", admin, h.Project.Update)
	projectRoutes.PUT("/:id/status", admin, h.Project.ChangeStatus)
	projectRoutes.DELETE("/:id", admin, h.Project.Delete)
	projectRoutes.GET("/:id/reports", h.Report.ListByProject)
	projectRoutes.POST("/:id/reports", h.Report.Submit)
	r.Register(projectRoutes)

	reportRoutes := NewDomainGroup("/reports").Use(g.Auth)
	reportRoutes.GET("/pending", admin, h.Report.ListPending)
	reportRoutes.GET("/:id", h.Report.Get)
	reportRoutes.POST("/:id/approve", admin, h.Report.Approve)
	reportRoutes.POST("/:id/reject", admin, h.Report.Reject)
	r.Register(reportRoutes)

	deadlineRoutes := NewDomainGroup("/deadlines").Use(g.Auth)
	deadlineRoutes.GET("/status", h.Deadline.Status)
	deadlineRoutes.POST("/sweep", admin, h.Deadline.Sweep)
	r.Register(deadlineRoutes)

	if h.Delivery != nil {
		deliveryRoutes := NewDomainGroup("/notifications/deliveries").Use(g.Auth, admin)
		deliveryRoutes.GET("/dead", h.Delivery.ListDead)
		deliveryRoutes.GET("/stats", h.Delivery.Stats)
		deliveryRoutes.POST("/:id/retry", h.Delivery.Retry)
		r.Register(deliveryRoutes)
	}
}
