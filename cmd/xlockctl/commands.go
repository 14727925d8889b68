package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/storage/xmongo"
	"github.com/kelchy/go-lib/pkg/storage/xredis"
)

// exitError 命令已完成输出，只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error()}
}

func createCommands() []*cli.Command {
	return []*cli.Command{
		createLockCommand(),
		createUnlockCommand(),
		createMGetCommand(),
		createMLockCommand(),
		createMUnlockCommand(),
	}
}

// session 一次命令执行所需的配置、日志和超时 context。
type session struct {
	cfg     fileConfig
	logger  xlog.Logger
	cleanup func() error
	ctx     context.Context
	cancel  context.CancelFunc
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := buildLogger(cmd, cfg.Log)
	if err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	return &session{cfg: cfg, logger: logger, cleanup: cleanup, ctx: ctx, cancel: cancel}, nil
}

func (s *session) close() {
	s.cancel()
	_ = s.cleanup()
}

func (s *session) redis() (xredis.Redis, error) {
	return xredis.NewFromConfig(s.ctx, s.cfg.Redis, xredis.WithLogger(s.logger))
}

func (s *session) mongo() (xmongo.Mongo, error) {
	if s.cfg.Mongo.LockCollection == "" {
		return nil, &usageError{msg: "mongo.lock_collection is not configured"}
	}
	return xmongo.NewFromConfig(s.ctx, s.cfg.Mongo, xmongo.WithLogger(s.logger))
}

// singleKey 校验恰好一个位置参数。
func singleKey(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 || cmd.Args().First() == "" {
		return "", &usageError{msg: fmt.Sprintf("%s 需要且仅需要一个 key 参数", cmd.Name)}
	}
	return cmd.Args().First(), nil
}

func reportLock(cmd *cli.Command, key string, ok bool) error {
	if !ok {
		fmt.Fprintf(cmd.Root().Writer, "held\t%s\n", key)
		return &exitError{code: exitContended}
	}
	fmt.Fprintf(cmd.Root().Writer, "acquired\t%s\n", key)
	return nil
}

func createLockCommand() *cli.Command {
	return &cli.Command{
		Name:      "lock",
		Usage:     "Redis 加锁（SET NX EX）",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "ttl", Usage: "锁过期时间，整秒", Value: 30 * time.Second},
			&cli.StringFlag{Name: "value", Usage: "锁值，便于识别持有者"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := singleKey(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r, err := s.redis()
			if err != nil {
				return err
			}
			defer r.Close()

			var value any
			if v := cmd.String("value"); v != "" {
				value = v
			}
			ok, err := r.Lock(s.ctx, key, cmd.Duration("ttl"), value)
			if err != nil {
				return err
			}
			return reportLock(cmd, key, ok)
		},
	}
}

func createUnlockCommand() *cli.Command {
	return &cli.Command{
		Name:         "unlock",
		Usage:        "Redis 解锁",
		ArgsUsage:    "<key>",
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := singleKey(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r, err := s.redis()
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Unlock(s.ctx, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "released\t%s\n", key)
			return nil
		},
	}
}

func createMGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "mget",
		Usage:     "批量读取，集群跨 slot 时用 --batch 分组",
		ArgsUsage: "<key> [key...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "batch", Usage: "每组 key 数，0 表示单次 MGET"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			keys := cmd.Args().Slice()
			if len(keys) == 0 {
				return &usageError{msg: "mget 至少需要一个 key"}
			}
			batch := cmd.Int("batch")
			if batch < 0 {
				return &usageError{msg: "--batch 不能为负数"}
			}

			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r, err := s.redis()
			if err != nil {
				return err
			}
			defer r.Close()

			var opts []xredis.MultiGetOption
			if batch > 0 {
				opts = append(opts, xredis.WithBatchSize(batch))
			}
			values, err := r.MultiGet(s.ctx, keys, opts...)
			if err != nil {
				return err
			}
			for i, k := range keys {
				if values[i] == nil {
					fmt.Fprintf(cmd.Root().Writer, "%s\t(nil)\n", k)
					continue
				}
				fmt.Fprintf(cmd.Root().Writer, "%s\t%v\n", k, values[i])
			}
			return nil
		},
	}
}

func createMLockCommand() *cli.Command {
	return &cli.Command{
		Name:      "mlock",
		Usage:     "Mongo 文档锁加锁",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "value", Usage: "锁值"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := singleKey(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			m, err := s.mongo()
			if err != nil {
				return err
			}
			defer m.Close(context.WithoutCancel(s.ctx))

			ok, err := m.Lock(s.ctx, key, cmd.String("value"))
			if err != nil {
				return err
			}
			return reportLock(cmd, key, ok)
		},
	}
}

func createMUnlockCommand() *cli.Command {
	return &cli.Command{
		Name:         "munlock",
		Usage:        "Mongo 文档锁解锁",
		ArgsUsage:    "<key>",
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key, err := singleKey(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			m, err := s.mongo()
			if err != nil {
				return err
			}
			defer m.Close(context.WithoutCancel(s.ctx))

			res, err := m.Unlock(s.ctx, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "released\t%s\tdeleted=%d\n", key, res.Deleted)
			return nil
		},
	}
}
