/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 主程序入口
 * @func: 初始化应用、启动服务器、等待中断信号
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rbacmaster/internal/app/master"
)

// shutdownTimeout 优雅关闭等待时间
const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "配置文件目录 (默认 configs 或 RBAC_CONFIG_PATH)")
	env := flag.String("env", "", "环境标识 (development, test, production)")
	flag.Parse()

	// 创建应用实例
	app, err := master.NewApp(*configPath, *env)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	// 启动服务器的goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Start()
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Println("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Stop(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exiting")
}
