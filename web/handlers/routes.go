package handlers

import (
	"github.com/gin-gonic/gin"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/infrastructure/communication"
	"crewtrack.in/crewtrack/web/middlewares"
)

type Services struct {
	Store     *core.AttendanceStore
	Auth      *core.AuthService
	Sites     core.SiteRepository
	Alerts    *communication.Slack
	JWTSecret []byte
}

// Register wires every route of the attendance API onto r.
func Register(r *gin.Engine, s Services) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	open := r.Group("/api/v1")
	{
		open.POST("/auth/login", LoginHandler(s.Auth))
		open.POST("/auth/verify-otp", VerifyOTPHandler(s.Auth))
		open.POST("/auth/supervisor/login", SupervisorLoginHandler(s.Auth))
	}

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(s.JWTSecret))
	{
		protected.POST("/auth/revoke-trust", RevokeTrustHandler(s.Auth))

		protected.POST("/attendance/sync", SyncAttendanceHandler(s.Store, s.Alerts))
		protected.GET("/attendance", ListAttendanceHandler(s.Store))
		protected.POST("/attendance/photo/clear", ClearPhotoHandler(s.Store))

		protected.GET("/me", MeHandler(s.Sites))
		protected.GET("/sites/:id/employees", SiteEmployeesHandler(s.Sites))
	}
}
