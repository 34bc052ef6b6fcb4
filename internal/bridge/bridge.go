// Package bridge поддерживает соединение с сервером событий и транслирует
// входящие события в хранилища.
//
// Соединение одно на аутентифицированную сессию и принадлежит мосту
// безраздельно: другие компоненты в него не пишут. События складываются
// в ограниченный канал и разбираются единственным циклом-диспетчером,
// поэтому эффекты моста проверяются без живого сокета. Порядок между
// событием сокета и параллельным HTTP-ответом не гарантируется:
// хранилище применяет то, что разрешилось последним.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mmeshcher/picker-system/internal/model"
)

// ErrNoToken возвращается при попытке подключиться без токена сессии.
var ErrNoToken = errors.New("session token is required")

var errClosed = errors.New("bridge is closed")

// State описывает состояние соединения. Нигде не сохраняется
// и строится заново при каждом запуске приложения.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// Event описывает входящее событие сервера.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type subscribeFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
}

// OrderSink принимает обновления заказов от моста.
type OrderSink interface {
	PrependAvailable(order model.Order)
	ApplyStatusUpdate(id string, status model.OrderStatus, timeline map[string]time.Time)
}

// NotificationSink принимает уведомления от моста.
type NotificationSink interface {
	Add(n model.Notification)
}

// Config содержит параметры подключения моста.
type Config struct {
	URL   string
	Token func() string

	UserID  string
	StoreID string

	MaxReconnectAttempts int
	QueueSize            int
}

// Bridge владеет соединением с сервером событий.
type Bridge struct {
	cfg           Config
	logger        *zap.Logger
	orders        OrderSink
	notifications NotificationSink

	events chan Event
	done   chan struct{}

	mu                sync.Mutex
	conn              *websocket.Conn
	lost              chan struct{}
	state             State
	reconnectAttempts int
	closed            bool
}

// New создаёт мост событий. Соединение не открывается до вызова Connect.
func New(cfg Config, orders OrderSink, notifications NotificationSink, logger *zap.Logger) *Bridge {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bridge{
		cfg:           cfg,
		logger:        logger,
		orders:        orders,
		notifications: notifications,
		events:        make(chan Event, cfg.QueueSize),
		done:          make(chan struct{}),
		state:         StateDisconnected,
	}
}

// Connect открывает соединение, подтверждает его токеном сессии и
// подписывается на личный канал, канал роли и канал склада.
func (b *Bridge) Connect(ctx context.Context) error {
	token := ""
	if b.cfg.Token != nil {
		token = b.cfg.Token()
	}
	if token == "" {
		return ErrNoToken
	}

	b.setState(StateConnecting)

	dialURL := b.cfg.URL + "?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		b.setState(StateError)
		return fmt.Errorf("dial socket: %w", err)
	}

	channels := []string{
		"user-" + b.cfg.UserID,
		"pickers",
	}
	if b.cfg.StoreID != "" {
		channels = append(channels, "store-"+b.cfg.StoreID)
	}
	for _, ch := range channels {
		if err := conn.WriteJSON(subscribeFrame{Event: "subscribe", Channel: ch}); err != nil {
			conn.Close()
			b.setState(StateError)
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
	}

	lost := make(chan struct{})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return errClosed
	}
	b.conn = conn
	b.lost = lost
	b.state = StateConnected
	b.reconnectAttempts = 0
	b.mu.Unlock()

	b.logger.Info("socket connected", zap.Strings("channels", channels))

	go b.readLoop(conn, lost)
	return nil
}

func (b *Bridge) readLoop(conn *websocket.Conn, lost chan struct{}) {
	defer close(lost)

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			b.mu.Lock()
			closed := b.closed
			if !closed {
				b.state = StateError
			}
			b.mu.Unlock()

			if !closed {
				b.logger.Warn("socket read error", zap.Error(err))
			}
			return
		}

		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

// Run разбирает входящие события до отмены контекста или закрытия моста.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.done:
			return nil
		case ev := <-b.events:
			b.dispatch(ev)
		}
	}
}

// RunWithReconnect держит соединение открытым, переподключаясь с
// экспоненциальной паузой, ограниченной MaxReconnectAttempts. Разбор
// событий запускается отдельной горутиной через Run.
func (b *Bridge) RunWithReconnect(ctx context.Context) error {
	for {
		backoff := retry.WithCappedDuration(30*time.Second,
			retry.WithMaxRetries(uint64(b.cfg.MaxReconnectAttempts),
				retry.NewExponential(time.Second)))

		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := b.Connect(ctx); err != nil {
				if errors.Is(err, ErrNoToken) || errors.Is(err, errClosed) {
					return err
				}
				b.mu.Lock()
				b.reconnectAttempts++
				attempts := b.reconnectAttempts
				b.mu.Unlock()
				b.logger.Warn("socket connect failed",
					zap.Int("attempt", attempts),
					zap.Error(err))
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			// Остановка приложения и закрытие моста не считаются сбоем.
			if ctx.Err() != nil || errors.Is(err, errClosed) {
				return nil
			}
			return fmt.Errorf("reconnect: %w", err)
		}

		b.mu.Lock()
		lost := b.lost
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-b.done:
			return nil
		case <-lost:
			b.mu.Lock()
			closed := b.closed
			b.mu.Unlock()
			if closed {
				return nil
			}
			b.logger.Info("socket connection lost, reconnecting")
		}
	}
}

// Close разрывает соединение и освобождает транспорт.
// Повторные вызовы безопасны.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	conn := b.conn
	b.conn = nil
	b.state = StateDisconnected
	b.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// State возвращает текущее состояние соединения.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ReconnectAttempts возвращает количество неудачных попыток подключения
// с момента последнего успешного соединения.
func (b *Bridge) ReconnectAttempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reconnectAttempts
}

// MaxReconnectAttempts возвращает предел попыток переподключения.
func (b *Bridge) MaxReconnectAttempts() int {
	return b.cfg.MaxReconnectAttempts
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}
