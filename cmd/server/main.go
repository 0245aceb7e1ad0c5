package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lootradar/lootradar-backend/api"
	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/platform/config"
	"github.com/lootradar/lootradar-backend/internal/platform/database"
	"github.com/lootradar/lootradar-backend/internal/platform/health"
	"github.com/lootradar/lootradar-backend/internal/platform/shutdown"
	"github.com/lootradar/lootradar-backend/internal/platform/startup"
	"github.com/lootradar/lootradar-backend/pkg/lifecycle"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置文件: %v", err))
	}
	gin.SetMode(cfg.Server.Mode)

	// 2. 初始化SQLite和Redis连接
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 3. 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 4. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 5. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 6. 创建两阶段停机所需的生命周期管理器
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	// 7. 异步启动后台的持续健康检查器
	healthHandle, err := gracefulManager.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(fmt.Sprintf("无法注册健康检查器: %v", err))
	}
	go health.StartRedisHealthCheck(healthHandle)

	// 8. 异步启动目录的定时落盘调度器
	persistHandle, err := gracefulManager.NewServiceHandle("catalog-persist-scheduler")
	if err != nil {
		panic(fmt.Sprintf("无法注册落盘调度器: %v", err))
	}
	go catalog.StartPersistScheduler(persistHandle)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// 9. 异步启动HTTP服务器
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 10. 阻塞等待停机信号，并执行两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
