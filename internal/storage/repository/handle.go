package repository

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handle лениво создаёт Storage при первом обращении.
// Результат первой попытки, включая ошибку, запоминается: повторного подключения нет.
type Handle struct {
	dsn     string
	once    sync.Once
	done    atomic.Bool
	storage *Storage
	err     error
	open    func(ctx context.Context, dsn string) (*Storage, error)
}

// NewHandle создаёт Handle для строки подключения dsn.
func NewHandle(dsn string) *Handle {
	return &Handle{dsn: dsn, open: New}
}

// Acquire возвращает Storage, подключаясь при первом вызове.
func (h *Handle) Acquire(ctx context.Context) (*Storage, error) {
	h.once.Do(func() {
		h.storage, h.err = h.open(ctx, h.dsn)
		h.done.Store(true)
	})
	return h.storage, h.err
}

// Ready сообщает, что подключение установлено успешно.
func (h *Handle) Ready() bool {
	return h.done.Load() && h.err == nil
}
