package inmemory

import (
	"context"
	"sync"
)

// FlagStore - ключ-значение в памяти, живёт до перезапуска процесса
type FlagStore struct {
	mtx   sync.RWMutex
	flags map[string]string
}

func NewFlagStore() *FlagStore {
	return &FlagStore{flags: make(map[string]string)}
}

func (f *FlagStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mtx.RLock()
	defer f.mtx.RUnlock()

	value, ok := f.flags[key]
	return value, ok, nil
}

func (f *FlagStore) Set(ctx context.Context, key, value string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.flags[key] = value
	return nil
}
