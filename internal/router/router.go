package router

import (
	"fmt"
	"strings"

	"github.com/postdeck-next/internal/cache"
	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/http/handlers/api"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := api.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, try again later",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), handler.Login)
		}

		// 业务接口（需鉴权）
		authed := apiV1.Group("")
		authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			authed.GET("/me", handler.Me)

			// 帖子与审批流
			authed.POST("/posts", handler.CreatePost)
			authed.GET("/posts", handler.ListPosts)
			authed.GET("/posts/:id", handler.GetPost)
			authed.PUT("/posts/:id", handler.UpdatePost)
			authed.DELETE("/posts/:id", handler.DeletePost)
			authed.POST("/posts/:id/submit", handler.SubmitPost)
			authed.POST("/posts/:id/approve", handler.ApprovePost)
			authed.POST("/posts/:id/reject", handler.RejectPost)
			authed.POST("/posts/:id/resubmit", handler.ResubmitPost)
			authed.POST("/posts/:id/cancel-approval", handler.CancelApproval)
			authed.POST("/posts/:id/to-draft", handler.ToDraft)

			// 平台页面
			authed.GET("/pages", handler.ListPages)

			// 通知
			authed.GET("/notifications", handler.ListNotifications)
			authed.GET("/notifications/unread-count", handler.UnreadCount)
			authed.POST("/notifications/read", handler.MarkNotificationsRead)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			authorized := admin.Use(
				JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
				AdminRBACMiddleware(c.AuthzService),
			)
			{
				// 用户与分配关系管理
				authorized.POST("/users", handler.CreateUser)
				authorized.GET("/users", handler.ListUsers)
				authorized.GET("/users/:id", handler.GetUser)
				authorized.PUT("/users/:id/status", handler.UpdateUserStatus)
				authorized.DELETE("/users/:id", handler.DeleteUser)
				authorized.POST("/assignments/client-moderator", handler.BindClientModerator)
				authorized.POST("/assignments/moderators", handler.AssignModerator)
				authorized.DELETE("/assignments/moderators", handler.UnassignModerator)
				authorized.POST("/assignments/clients", handler.AssignClient)
				authorized.DELETE("/assignments/clients", handler.UnassignClient)

				// 页面管理
				authorized.POST("/pages", handler.CreatePage)
				authorized.GET("/pages", handler.ListPages)
				authorized.POST("/pages/:id/deactivate", handler.DeactivatePage)
				authorized.DELETE("/pages/:id", handler.DeletePage)

				// 全量帖子与调度
				authorized.GET("/posts", handler.ListAllPosts)
				authorized.GET("/posts/:id", handler.GetPost)
				authorized.POST("/dispatch/sweep", handler.TriggerSweep)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
