package storeopt

import "sync/atomic"

// HealthCounter 健康检查计数器。
type HealthCounter struct {
	pingCount  atomic.Int64
	pingErrors atomic.Int64
}

// IncPing 增加 ping 计数。
func (h *HealthCounter) IncPing() {
	h.pingCount.Add(1)
}

// IncPingError 增加 ping 错误计数。
func (h *HealthCounter) IncPingError() {
	h.pingErrors.Add(1)
}

// PingCount 返回 ping 计数。
func (h *HealthCounter) PingCount() int64 {
	return h.pingCount.Load()
}

// PingErrors 返回 ping 错误计数。
func (h *HealthCounter) PingErrors() int64 {
	return h.pingErrors.Load()
}

// OpCounter 统计某类操作的调用次数与失败次数。
type OpCounter struct {
	total  atomic.Int64
	errors atomic.Int64
}

// Observe 记录一次操作，err 非 nil 时同时计入失败。
func (c *OpCounter) Observe(err error) {
	c.total.Add(1)
	if err != nil {
		c.errors.Add(1)
	}
}

// Total 返回操作总次数。
func (c *OpCounter) Total() int64 {
	return c.total.Load()
}

// Errors 返回失败次数。
func (c *OpCounter) Errors() int64 {
	return c.errors.Load()
}
