package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sheetdesk/internal/config"
	"sheetdesk/internal/server"
)

var (
	port    = flag.Int("port", 0, "服务端口 (覆盖 config.toml)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	log := config.GetLogger()

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warnf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	config.SetDebug(cfg.Server.DevMode)

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		log.Infof("服务启动中，监听端口 %d ...", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")
	if err := srv.Close(); err != nil {
		log.Warnf("关闭存储失败: %v", err)
	}
}
