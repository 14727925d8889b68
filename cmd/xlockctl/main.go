// xlockctl 是分布式锁与批量读取的命令行工具，用于排查和手工干预锁状态。
//
// 用法:
//
//	xlockctl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      YAML/JSON 配置文件（redis、mongo、log 三节）
//	--redis-addr      Redis 地址，可重复，覆盖配置文件
//	--standalone      使用单机 Redis 客户端（默认集群）
//	--mongo-uri       MongoDB 连接串，覆盖配置文件
//	-t, --timeout     整体超时 (默认: 10s)
//	--log-level       日志级别 (默认: info)
//
// 命令:
//
//	lock <key>        Redis 加锁 (--ttl, --value)
//	unlock <key>      Redis 解锁
//	mget <keys...>    批量读取 (--batch 指定每组 key 数)
//	mlock <key>       Mongo 文档锁加锁 (--value)
//	munlock <key>     Mongo 文档锁解锁
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误
//	3: 锁已被他人持有
//
// 示例:
//
//	xlockctl -c xlockctl.yaml lock job:42 --ttl 30s --value "$(hostname)"
//	xlockctl --standalone --redis-addr 127.0.0.1:6379 mget a b c --batch 2
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
	"github.com/kelchy/go-lib/pkg/storage/xmongo"
	"github.com/kelchy/go-lib/pkg/storage/xredis"
)

const defaultTimeout = 10 * time.Second

// 退出码
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitContended = 3
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xlockctl",
		Usage:     "分布式锁与批量读取命令行工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（.yaml/.yml/.json）",
			},
			&cli.StringSliceFlag{
				Name:  "redis-addr",
				Usage: "Redis 地址，可重复指定",
			},
			&cli.BoolFlag{
				Name:  "standalone",
				Usage: "使用单机 Redis 客户端",
			},
			&cli.StringFlag{
				Name:  "mongo-uri",
				Usage: "MongoDB 连接串",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "整体超时",
				Value:   defaultTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
			},
		},
		Commands:     createCommands(),
		OnUsageError: onUsageError,
		// 由 run 统一映射退出码，禁止框架直接 os.Exit
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) || errors.Is(err, xdlock.ErrInvalidArgument) ||
		errors.Is(err, xredis.ErrInvalidBatchSize) || errors.Is(err, xmongo.ErrNoLockDatabase) {
		fmt.Fprintf(stderr, "参数错误: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return exitFailure
}
