package main

import (
	"github.com/urfave/cli/v3"

	"github.com/kelchy/go-lib/pkg/config/xconf"
	"github.com/kelchy/go-lib/pkg/observability/xlog"
	"github.com/kelchy/go-lib/pkg/storage/xmongo"
	"github.com/kelchy/go-lib/pkg/storage/xredis"
)

// logConfig 日志配置节。
type logConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File 非空时写入文件并按大小轮转。
	File string `koanf:"file"`
}

// fileConfig 配置文件结构。
type fileConfig struct {
	Log   logConfig     `koanf:"log"`
	Redis xredis.Config `koanf:"redis"`
	Mongo xmongo.Config `koanf:"mongo"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Log:   logConfig{Level: "info", Format: "text"},
		Redis: xredis.DefaultConfig(),
		Mongo: xmongo.DefaultConfig(),
	}
}

// loadConfig 读取配置文件（可选）并应用命令行覆盖。
func loadConfig(cmd *cli.Command) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path := cmd.String("config"); path != "" {
		c, err := xconf.New(path)
		if err != nil {
			return cfg, err
		}
		if err := c.Unmarshal("", &cfg); err != nil {
			return cfg, err
		}
	}

	if addrs := cmd.StringSlice("redis-addr"); len(addrs) > 0 {
		cfg.Redis.Addrs = addrs
	}
	if cmd.Bool("standalone") {
		cfg.Redis.Cluster = false
	}
	if uri := cmd.String("mongo-uri"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// buildLogger 日志写入命令的 ErrWriter，配置了文件时写入文件。
func buildLogger(cmd *cli.Command, cfg logConfig) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format)
	if cfg.File != "" {
		b = b.SetRotation(cfg.File)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, cleanup, nil
}
