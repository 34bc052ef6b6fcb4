package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/model"
)

// ErrOrderNotReady возвращается при попытке завершить заказ,
// в котором остались незакрытые позиции. Запрос к серверу не выполняется.
var ErrOrderNotReady = errors.New("order has unresolved items")

// OrdersAPI определяет операции API, используемые хранилищем заказов.
type OrdersAPI interface {
	AvailableOrders(ctx context.Context, f api.OrderFilter) (*api.OrdersPage, error)
	MyOrders(ctx context.Context, f api.OrderFilter) (*api.OrdersPage, error)
	OrderDetails(ctx context.Context, id string) (*model.Order, error)
	AcceptOrder(ctx context.Context, id string) (*model.Order, error)
	StartPicking(ctx context.Context, id string) (*model.Order, error)
	PickItem(ctx context.Context, orderID, itemID, binCode string) (*model.Order, error)
	ReportItemIssue(ctx context.Context, orderID, itemID, reason string) (*model.Order, error)
	CompleteOrder(ctx context.Context, id string) (*model.Order, error)
}

// Orders хранит заказы: доступные для принятия и закреплённые за сборщиком.
type Orders struct {
	mu      sync.RWMutex
	api     OrdersAPI
	notices *Notices

	available  []model.Order
	mine       []model.Order
	current    *model.Order
	filter     api.OrderFilter
	pagination model.Pagination
	loading    bool
	err        string
}

// NewOrders создаёт хранилище заказов.
func NewOrders(client OrdersAPI, notices *Notices) *Orders {
	return &Orders{
		api:     client,
		notices: notices,
	}
}

// SetFilter устанавливает параметры выборки для последующих запросов списков.
func (s *Orders) SetFilter(f api.OrderFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// FetchAvailable запрашивает доступные заказы и заменяет их список целиком.
// При ошибке последний успешный список сохраняется.
func (s *Orders) FetchAvailable(ctx context.Context) error {
	s.setLoading()

	s.mu.RLock()
	f := s.filter
	s.mu.RUnlock()

	page, err := s.api.AvailableOrders(ctx, f)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.available = page.Orders
	s.pagination = page.Pagination
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// FetchMine запрашивает заказы текущего сборщика и заменяет их список целиком.
func (s *Orders) FetchMine(ctx context.Context) error {
	s.setLoading()

	s.mu.RLock()
	f := s.filter
	s.mu.RUnlock()

	page, err := s.api.MyOrders(ctx, f)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.mine = page.Orders
	s.pagination = page.Pagination
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// FetchOne запрашивает один заказ и заменяет кеш текущего заказа.
func (s *Orders) FetchOne(ctx context.Context, id string) error {
	s.setLoading()

	order, err := s.api.OrderDetails(ctx, id)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.current = order
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// Accept закрепляет заказ за текущим сборщиком. При успехе заказ
// удаляется из доступных и ровно один раз появляется в списке своих.
func (s *Orders) Accept(ctx context.Context, id string) error {
	updated, err := s.api.AcceptOrder(ctx, id)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.mu.Lock()
	s.available = removeOrder(s.available, id)
	s.mine = upsertOrder(s.mine, *updated)
	if s.current != nil && s.current.ID == id {
		s.current = updated
	}
	s.mu.Unlock()

	s.notices.Publish(NoticeSuccess, "order "+updated.OrderNumber+" accepted")
	return nil
}

// Start переводит заказ в статус сборки.
func (s *Orders) Start(ctx context.Context, id string) error {
	updated, err := s.api.StartPicking(ctx, id)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "picking started")
	return nil
}

// PickItem отмечает позицию заказа собранной из указанной ячейки.
func (s *Orders) PickItem(ctx context.Context, orderID, itemID, binCode string) error {
	updated, err := s.api.PickItem(ctx, orderID, itemID, binCode)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "item picked")
	return nil
}

// ReportIssue фиксирует проблему по позиции заказа.
func (s *Orders) ReportIssue(ctx context.Context, orderID, itemID, reason string) error {
	updated, err := s.api.ReportItemIssue(ctx, orderID, itemID, reason)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "issue reported")
	return nil
}

// Complete завершает сборку заказа. Если в известной клиенту копии заказа
// остались незакрытые позиции, запрос не выполняется.
func (s *Orders) Complete(ctx context.Context, id string) error {
	if cached, ok := s.find(id); ok && !cached.ReadyToComplete() {
		return ErrOrderNotReady
	}

	updated, err := s.api.CompleteOrder(ctx, id)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "order "+updated.OrderNumber+" completed")
	return nil
}

// PrependAvailable добавляет новый заказ в начало списка доступных.
// Повторное событие с тем же заказом игнорируется.
func (s *Orders) PrependAvailable(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.available {
		if o.ID == order.ID {
			return
		}
	}
	s.available = append([]model.Order{order}, s.available...)
}

// ApplyStatusUpdate обновляет статус и таймлайн заказа во всех кешах,
// где он присутствует. Кеши без этого заказа не меняются.
func (s *Orders) ApplyStatusUpdate(id string, status model.OrderStatus, timeline map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch := func(o *model.Order) {
		o.Status = status
		if len(timeline) > 0 {
			if o.Timeline == nil {
				o.Timeline = make(map[string]time.Time, len(timeline))
			}
			for k, v := range timeline {
				o.Timeline[k] = v
			}
		}
	}

	for i := range s.available {
		if s.available[i].ID == id {
			patch(&s.available[i])
		}
	}
	for i := range s.mine {
		if s.mine[i].ID == id {
			patch(&s.mine[i])
		}
	}
	if s.current != nil && s.current.ID == id {
		patch(s.current)
	}
}

// Reset очищает состояние хранилища при выходе пользователя.
func (s *Orders) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = nil
	s.mine = nil
	s.current = nil
	s.pagination = model.Pagination{}
	s.loading = false
	s.err = ""
}

// Available возвращает копию списка доступных заказов.
func (s *Orders) Available() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.available...)
}

// Mine возвращает копию списка заказов текущего сборщика.
func (s *Orders) Mine() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.mine...)
}

// Current возвращает копию текущего заказа или nil.
func (s *Orders) Current() *model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Pagination возвращает метаданные последнего успешного списка.
func (s *Orders) Pagination() model.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Loading сообщает, выполняется ли сейчас запрос списка или заказа.
func (s *Orders) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает текст последней ошибки запроса или пустую строку.
func (s *Orders) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Orders) setLoading() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

func (s *Orders) setErr(err error) {
	s.mu.Lock()
	s.loading = false
	s.err = err.Error()
	s.mu.Unlock()
}

// apply заменяет заказ во всех кешах, где он присутствует.
func (s *Orders) apply(updated *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.available {
		if s.available[i].ID == updated.ID {
			s.available[i] = *updated
		}
	}
	for i := range s.mine {
		if s.mine[i].ID == updated.ID {
			s.mine[i] = *updated
		}
	}
	if s.current != nil && s.current.ID == updated.ID {
		s.current = updated
	}
}

func (s *Orders) find(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current != nil && s.current.ID == id {
		return *s.current, true
	}
	for _, o := range s.mine {
		if o.ID == id {
			return o, true
		}
	}
	for _, o := range s.available {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

func removeOrder(orders []model.Order, id string) []model.Order {
	out := orders[:0]
	for _, o := range orders {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

func upsertOrder(orders []model.Order, order model.Order) []model.Order {
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			return orders
		}
	}
	return append(orders, order)
}
