package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	delim  = "."
	tagKey = "koanf"
)

// Config 只读配置，加载后不再变化，可并发使用。
type Config struct {
	k      *koanf.Koanf
	path   string
	format Format
}

// New 从文件加载配置，按扩展名（.yaml/.yml/.json）识别格式。空文件得到空配置。
func New(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	cfg, err := NewFromBytes(data, format)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// NewFromBytes 从内存数据加载配置，格式需显式指定。
func NewFromBytes(data []byte, format Format) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(delim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	return &Config{k: k, format: format}, nil
}

// FormatOf 根据文件扩展名返回格式。
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// Unmarshal 将 path 下的配置反序列化到 target，path 为空时使用整个配置。
// 配置中缺失的字段保留 target 原值，因此可以先填好默认值再调用。
func (c *Config) Unmarshal(path string, target any) error {
	if err := c.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: tagKey}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Exists 判断 path 是否存在。
func (c *Config) Exists(path string) bool {
	return c.k.Exists(path)
}

// String 返回 path 对应的字符串值，不存在时返回空串。
func (c *Config) String(path string) string {
	return c.k.String(path)
}

// Path 返回来源文件路径，内存加载时为空。
func (c *Config) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *Config) Format() Format {
	return c.format
}

// Koanf 返回底层 koanf 实例。
func (c *Config) Koanf() *koanf.Koanf {
	return c.k
}
