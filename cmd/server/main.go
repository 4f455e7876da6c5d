// @title           Lifeline HTTP Service API
// @version         1.0
// @description     工场内紧急联络・职员应急档案查询服务（命をツナゲル）
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"lifeline-http-service/internal/app/middleware"
	"lifeline-http-service/internal/app/routes"
	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/infrastructure/config"
	"lifeline-http-service/internal/infrastructure/storage"
	Logger "lifeline-http-service/pkg/logger"
)

// 存储槽名称。Redis后端作key，文件后端作文件名。
const (
	masterDocSlotName = "lifeline:master-document"
	sealKeySlotName   = "lifeline:seal-key"
	masterDocFileName = "master-document.json"
	sealKeyFileName   = "seal.key"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 按配置选择存储后端
	redisClient, keySlot, docSlot := setupStorage(cfg)
	middleware.InitCacheMiddleware(redisClient)

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(cfg, redisClient, keySlot, docSlot)

	// 准备加密密钥并加载主数据
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if seal, ok := serviceContainer.GetService("seal").(services.InterfaceSealService); ok && seal != nil {
		if err := seal.EnsureKey(ctx); err != nil {
			if errors.Is(err, services.ErrEnvironmentUnsupported) {
				log.Fatalf("运行环境缺少加密能力: %v", err)
			}
			log.Fatalf("准备加密密钥失败: %v", err)
		}
	}

	master := serviceContainer.GetService("master").(services.InterfaceMasterService)
	if err := master.Load(ctx); err != nil {
		log.Fatalf("加载主数据失败: %v", err)
	}

	// 初始化路由
	r := routes.SetupRouter(serviceContainer, cfg)

	// 使用配置中的端口
	port := cfg.ServerPort

	// 打印系统信息
	printSystemInfo(cfg)

	// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// setupStorage 按配置创建存储槽。
// 默认用Redis；STORAGE_BACKEND=file时落到本地文件（单机免依赖部署）。
func setupStorage(cfg *config.Config) (*redis.Client, storage.Slot, storage.Slot) {
	if cfg.StorageBackend == "file" {
		Logger.Info("使用文件存储后端: %s", cfg.DataDir)
		return nil,
			storage.NewFileSlot(cfg.DataDir, sealKeyFileName),
			storage.NewFileSlot(cfg.DataDir, masterDocFileName)
	}

	client := storage.NewRedisClient(cfg)
	Logger.Info("使用Redis存储后端: %s", cfg.GetRedisAddr())
	return client,
		storage.NewRedisSlot(client, sealKeySlotName),
		storage.NewRedisSlot(client, masterDocSlotName)
}

// printSystemInfo 打印系统信息
func printSystemInfo(cfg *config.Config) {
	log.Printf("环境: %s, 存储后端: %s, 加密: %v",
		cfg.EnvType, cfg.StorageBackend, cfg.EncryptionEnabled)
	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
