package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"npj/apperr"
	"npj/middlewares"
	"npj/models"
	"npj/utils"
	"npj/workflow"
)

// Deps is the dependency-injection container handlers run against; main
// builds the real thing, tests feed in mocks.
type Deps struct {
	Users         models.UserRepository
	Cases         models.CaseRepository
	Attachments   models.AttachmentRepository
	Notifications models.NotificationRepository
	Workflow      *workflow.Service
	Inv           *utils.CacheInvalidator
}

type deps struct{ Deps }

func RegisterRoutes(server *gin.Engine, d Deps, rdb *redis.Client) {
	h := &deps{d}

	// global per-IP limiter
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// stricter limiter on the credential endpoints
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		h.signup,
	)
	server.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		h.login,
	)

	// public read-only endpoints, served through the response cache
	server.GET("/events/stats", h.eventStats)
	server.GET("/cases", h.listCases)
	server.GET("/cases/:id", h.getCase)
	server.GET("/cases/stats", h.caseStats)
	server.GET("/cases/:id/attachments", h.listAttachments)

	// authenticated group: per-user limiter plus a daily quota
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate)

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + strconv.FormatInt(c.GetInt64("userId"), 10)
	}))

	auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  2000,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			uid := c.GetInt64("userId")
			if uid == 0 {
				return ""
			}
			return fmt.Sprintf("quota:user:%d:day", uid)
		},
	}))

	auth.GET("/events", h.listEvents)
	auth.GET("/events/:id", h.getEvent)
	auth.POST("/events", h.createEvent)
	auth.POST("/events/:id/approve", h.approveEvent)
	auth.POST("/events/:id/reject", h.rejectEvent)
	auth.POST("/events/:id/cancel", h.cancelEvent)
	auth.POST("/events/:id/complete", h.completeEvent)
	auth.POST("/events/:id/respond", h.respondEvent)

	auth.POST("/cases", h.createCase)
	auth.PUT("/cases/:id", h.updateCase)
	auth.POST("/cases/:id/attachments", h.createAttachment)
	auth.DELETE("/attachments/:id", h.deleteAttachment)

	auth.GET("/notifications", h.listNotifications)
	auth.POST("/notifications/:id/read", h.readNotification)
}

func caller(c *gin.Context) workflow.Caller {
	return workflow.Caller{
		ID:   c.GetInt64("userId"),
		Role: models.Role(c.GetString("role")),
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id."})
		return 0, false
	}
	return id, true
}

// abortErr translates application errors to their HTTP status; anything
// unrecognized becomes a generic 500.
func abortErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Something went wrong. Try again later."
	}
	c.JSON(status, gin.H{"message": msg})
}
