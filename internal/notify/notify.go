package notify

import (
	"context"
	"sync"
	"time"

	"taskMaster/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification - короткое сообщение пользователю о результате операции
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	At          time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Log пишет уведомления в журнал
type Log struct{}

func (Log) Notify(ctx context.Context, n Notification) {
	level := zapcore.InfoLevel
	if n.Severity == SeverityDestructive {
		level = zapcore.WarnLevel
	}
	logger.Log(level, "Notify: "+n.Title,
		zap.String("description", n.Description),
		zap.String("severity", string(n.Severity)))
}

// Buffer хранит последние уведомления для выдачи через API
type Buffer struct {
	mtx   sync.RWMutex
	items []Notification
	size  int
	next  int
	full  bool
	now   func() time.Time
}

func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 50
	}
	return &Buffer{
		items: make([]Notification, size),
		size:  size,
		now:   time.Now,
	}
}

func (b *Buffer) Notify(ctx context.Context, n Notification) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if n.At.IsZero() {
		n.At = b.now().UTC()
	}
	b.items[b.next] = n
	b.next = (b.next + 1) % b.size
	if b.next == 0 {
		b.full = true
	}
}

// Recent возвращает уведомления, новые первыми
func (b *Buffer) Recent() []Notification {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	count := b.next
	if b.full {
		count = b.size
	}

	res := make([]Notification, 0, count)
	for i := 1; i <= count; i++ {
		res = append(res, b.items[(b.next-i+b.size)%b.size])
	}
	return res
}

// Multi рассылает уведомление всем получателям по порядку
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
