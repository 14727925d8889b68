package xmongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/kelchy/go-lib/pkg/distributed/xdlock"
)

// mockClientOps 实现 clientOperations。
type mockClientOps struct {
	pingErr       error
	pingCount     int
	disconnectErr error
	disconnected  bool
	sessions      int
}

func (m *mockClientOps) Ping(_ context.Context, _ *readpref.ReadPref) error {
	m.pingCount++
	return m.pingErr
}

func (m *mockClientOps) Disconnect(_ context.Context) error {
	m.disconnected = true
	return m.disconnectErr
}

func (m *mockClientOps) NumberSessionsInProgress() int {
	return m.sessions
}

// fakeLocker 以内存 map 模拟 _id 唯一约束。
type fakeLocker struct {
	mu      sync.Mutex
	held    map[string]any
	lockErr error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]any)}
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ ...xdlock.LockOption) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return false, f.lockErr
	}
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = struct{}{}
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, key string) (*xdlock.UnlockResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[key]; !ok {
		return &xdlock.UnlockResult{}, nil
	}
	delete(f.held, key)
	return &xdlock.UnlockResult{Deleted: 1}, nil
}
