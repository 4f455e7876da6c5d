package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/infrastructure/config"
	"lifeline-http-service/internal/infrastructure/storage"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	config *config.Config
	redis  *redis.Client

	// 持久化槽位
	keySlot storage.Slot
	docSlot storage.Slot

	// 基础服务
	jwtService  services.InterfaceJWTService
	sealService services.InterfaceSealService

	// 业务服务
	masterService   services.InterfaceMasterService
	gateService     services.InterfaceGateService
	lookupService   services.InterfaceLookupService
	workflowService services.InterfaceWorkflowService
	zoneService     services.InterfaceZoneService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(cfg *config.Config, redisClient *redis.Client, keySlot, docSlot storage.Slot) *ServiceContainer {
	if cfg == nil {
		panic("配置为空")
	}
	if docSlot == nil {
		panic("主数据存储槽位为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v", err)
		}
	}

	container := &ServiceContainer{
		config:  cfg,
		redis:   redisClient,
		keySlot: keySlot,
		docSlot: docSlot,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	c.zoneService = services.NewZoneService()

	// 初始化封印服务；可配置关闭加密（主要用于排障和测试）
	var seal services.InterfaceSealService
	if c.config.EncryptionEnabled {
		seal = services.NewSealService(c.keySlot)
	}
	c.sealService = seal

	// 初始化业务服务
	c.masterService = services.NewMasterService(c.docSlot, seal, c.zoneService)
	c.gateService = services.NewGateService(c.masterService, c.jwtService, c.config)
	c.lookupService = services.NewLookupService(c.masterService)
	c.workflowService = services.NewWorkflowService(c.masterService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "redis":
		return c.redis
	case "jwt":
		return c.jwtService
	case "seal":
		return c.sealService
	case "master":
		return c.masterService
	case "gate":
		return c.gateService
	case "lookup":
		return c.lookupService
	case "workflow":
		return c.workflowService
	case "zone":
		return c.zoneService
	default:
		return nil
	}
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}
