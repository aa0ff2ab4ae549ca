package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"

	"shopee/internal/config"
	"shopee/internal/mmlclient"
)

// serverURL MML_SERVER_URL 优先，其次读取服务配置的监听地址
func serverURL() string {
	if u := os.Getenv("MML_SERVER_URL"); u != "" {
		return u
	}

	cfg, err := config.Load("")
	if err != nil || !cfg.Server.Enabled {
		return mmlclient.DefaultServerURL
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
}

// userID MML_USER_ID 未设置或无效时为 0
func userID() int64 {
	id, err := strconv.ParseInt(os.Getenv("MML_USER_ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func main() {
	shell, err := mmlclient.NewShell(mmlclient.NewClient(serverURL(), userID()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		if err := shell.Run(context.Background(), os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "读取输入时出错: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := os.Args[1]
	if name == "-h" || name == "--help" {
		fmt.Println(shell.Registry().Help())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := shell.Exec(ctx, name, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
