// Package store содержит клиентские хранилища состояния приложения сборщика.
//
// Каждое хранилище держит последнее известное состояние одного семейства
// ресурсов сервера и набор операций над ним. Мутации сериализуются
// мьютексом хранилища; между параллельным запросом и событием сокета
// порядок применения не гарантируется, выигрывает разрешившийся последним.
package store

// NoticeLevel описывает уровень всплывающего сообщения.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice описывает одноразовое всплывающее сообщение для пользователя.
// Это не сущность Notification: сообщения нигде не сохраняются.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notices предоставляет общий канал всплывающих сообщений от хранилищ.
type Notices struct {
	ch chan Notice
}

// NewNotices создаёт канал сообщений указанной ёмкости.
func NewNotices(size int) *Notices {
	if size <= 0 {
		size = 16
	}
	return &Notices{ch: make(chan Notice, size)}
}

// Publish отправляет сообщение без блокировки. Если потребитель
// не успевает, сообщение отбрасывается.
func (n *Notices) Publish(level NoticeLevel, message string) {
	if n == nil {
		return
	}
	select {
	case n.ch <- Notice{Level: level, Message: message}:
	default:
	}
}

// C возвращает канал для чтения сообщений.
func (n *Notices) C() <-chan Notice {
	return n.ch
}
