package xmongo

import "errors"

var (
	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("xmongo: nil client")

	// ErrClosed 客户端已关闭。
	ErrClosed = errors.New("xmongo: client closed")

	// ErrNoURI 配置中缺少连接串。
	ErrNoURI = errors.New("xmongo: uri is required")

	// ErrNoLockDatabase 配置了锁集合但缺少数据库名。
	ErrNoLockDatabase = errors.New("xmongo: database is required when lock_collection is set")
)
