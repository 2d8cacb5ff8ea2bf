package service

import (
	"sync"

	"github.com/noah-isme/newsroom-console/internal/models"
)

// Notifier receives user-visible notifications emitted by operations.
type Notifier interface {
	Notify(level, message string)
}

// NoticeBuffer collects notices for the current request.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []models.Notice
}

// NewNoticeBuffer returns an empty buffer.
func NewNoticeBuffer() *NoticeBuffer {
	return &NoticeBuffer{}
}

// Notify appends a notice.
func (b *NoticeBuffer) Notify(level, message string) {
	b.mu.Lock()
	b.notices = append(b.notices, models.Notice{Level: level, Message: message})
	b.mu.Unlock()
}

// Drain returns the collected notices and empties the buffer.
func (b *NoticeBuffer) Drain() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

func notifySuccess(n Notifier, message string) {
	if n != nil {
		n.Notify(models.NoticeSuccess, message)
	}
}
