package store

import (
	"context"
	"sync"

	"github.com/mmeshcher/picker-system/internal/model"
)

// NotificationsAPI определяет операции API, используемые хранилищем уведомлений.
type NotificationsAPI interface {
	Notifications(ctx context.Context) ([]model.Notification, error)
}

// Notifications хранит упорядоченную коллекцию уведомлений: новые первыми.
// Счётчик непрочитанных нигде не хранится и пересчитывается по списку,
// чтобы исключить расхождение с ним.
type Notifications struct {
	mu      sync.RWMutex
	api     NotificationsAPI
	items   []model.Notification
	loading bool
	err     string
}

// NewNotifications создаёт хранилище уведомлений. client может быть nil,
// тогда хранилище наполняется только событиями сокета.
func NewNotifications(client NotificationsAPI) *Notifications {
	return &Notifications{api: client}
}

// Fetch запрашивает сохранённые уведомления и заменяет коллекцию целиком.
func (s *Notifications) Fetch(ctx context.Context) error {
	if s.api == nil {
		return nil
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.api.Notifications(ctx)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.items = items
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// Add добавляет уведомление в начало коллекции.
func (s *Notifications) Add(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]model.Notification{n}, s.items...)
}

// MarkAsRead помечает уведомление прочитанным.
func (s *Notifications) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
		}
	}
}

// MarkAllRead помечает все уведомления прочитанными.
func (s *Notifications) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
}

// UnreadCount возвращает количество непрочитанных уведомлений,
// пересчитанное по текущей коллекции.
func (s *Notifications) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Items возвращает копию коллекции уведомлений.
func (s *Notifications) Items() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification(nil), s.items...)
}

// Reset очищает состояние хранилища при выходе пользователя.
func (s *Notifications) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loading = false
	s.err = ""
}

// Loading сообщает, выполняется ли сейчас запрос.
func (s *Notifications) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает текст последней ошибки запроса или пустую строку.
func (s *Notifications) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
