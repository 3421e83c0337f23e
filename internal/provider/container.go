package provider

import (
	"time"

	"github.com/postdeck-next/internal/authz"
	"github.com/postdeck-next/internal/cache"
	"github.com/postdeck-next/internal/config"
	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/models"
	"github.com/postdeck-next/internal/platform"
	"github.com/postdeck-next/internal/queue"
	"github.com/postdeck-next/internal/repository"
	"github.com/postdeck-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	PostRepo         repository.PostRepository
	PageRepo         repository.PlatformPageRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserService         *service.UserService
	AuthorizeService    *service.AuthorizeService
	NotificationService *service.NotificationService
	WorkflowService     *service.WorkflowService
	PageService         *service.PageService
	DispatchService     *service.DispatchService

	// Platform adapters
	PlatformRegistry *platform.Registry
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.PageRepo = repository.NewPlatformPageRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.PlatformRegistry = platform.NewRegistry(c.Config.Platforms)

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.AuthService, c.AuthzService)
	c.AuthorizeService = service.NewAuthorizeService(c.UserRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo)
	c.WorkflowService = service.NewWorkflowService(c.PostRepo, c.UserRepo, c.PageRepo, c.AuthorizeService, c.NotificationService)
	c.PageService = service.NewPageService(c.PageRepo, c.UserRepo)

	publishTimeout := time.Duration(c.Config.Dispatch.PublishTimeoutSeconds) * time.Second
	c.DispatchService = service.NewDispatchService(c.PostRepo, c.PageRepo, c.PlatformRegistry, c.QueueClient, c.NotificationService, publishTimeout)
}
