package xdlock

import (
	"errors"
	"fmt"
)

// 预定义错误，使用 errors.Is 匹配。
//
// 锁竞争不是错误，TryLock 以 (false, nil) 表示。
var (
	// ErrInvalidArgument key 或 ttl 不合法。
	ErrInvalidArgument = errors.New("xdlock: invalid argument")

	// ErrEmptyKey key 为空或仅含空白。
	ErrEmptyKey = fmt.Errorf("%w: key must not be empty", ErrInvalidArgument)

	// ErrInvalidTTL ttl 不是正整数秒。
	ErrInvalidTTL = fmt.Errorf("%w: ttl must be a positive whole number of seconds", ErrInvalidArgument)

	// ErrInvalidKey 文档锁的 key 不合法，同时匹配 ErrInvalidArgument。
	ErrInvalidKey = fmt.Errorf("%w: invalid lock key", ErrInvalidArgument)

	// ErrDisabled 锁功能未在构造时启用。
	ErrDisabled = errors.New("xdlock: lock feature is disabled")

	// ErrAnomaly 存储确认的结果与请求不一致，说明存储或驱动违反了约定，不应重试。
	ErrAnomaly = errors.New("xdlock: store acknowledged a different lock identity")

	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("xdlock: client is nil")
)
