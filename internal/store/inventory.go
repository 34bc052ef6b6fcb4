package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/model"
)

// ErrInvalidAdjustment возвращается при нулевой корректировке остатка.
var ErrInvalidAdjustment = errors.New("stock adjustment must not be zero")

// InventoryAPI определяет операции API, используемые хранилищем товаров.
type InventoryAPI interface {
	Products(ctx context.Context, f api.InventoryFilter) (*api.ProductsPage, error)
	ProductDetails(ctx context.Context, id string) (*model.Product, error)
	AdjustStock(ctx context.Context, productID string, adjustment int, reason string) (*model.Product, error)
}

// Inventory хранит список товаров и текущий товар.
type Inventory struct {
	mu      sync.RWMutex
	api     InventoryAPI
	notices *Notices

	products   []model.Product
	current    *model.Product
	filter     api.InventoryFilter
	pagination model.Pagination
	loading    bool
	err        string
}

// NewInventory создаёт хранилище товаров.
func NewInventory(client InventoryAPI, notices *Notices) *Inventory {
	return &Inventory{
		api:     client,
		notices: notices,
	}
}

// SetFilter устанавливает параметры выборки для последующих запросов списка.
func (s *Inventory) SetFilter(f api.InventoryFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Fetch запрашивает список товаров и заменяет его целиком.
// При ошибке последний успешный список сохраняется.
func (s *Inventory) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	f := s.filter
	s.mu.Unlock()

	page, err := s.api.Products(ctx, f)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.products = page.Products
	s.pagination = page.Pagination
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// Search устанавливает строку поиска и запрашивает список заново.
func (s *Inventory) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	s.filter.Search = query
	s.filter.Page = 0
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// FetchOne запрашивает один товар и заменяет кеш текущего товара.
func (s *Inventory) FetchOne(ctx context.Context, id string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	product, err := s.api.ProductDetails(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.current = product
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// AdjustStock изменяет остаток товара и обновляет его во всех кешах.
func (s *Inventory) AdjustStock(ctx context.Context, productID string, adjustment int, reason string) error {
	if adjustment == 0 {
		return ErrInvalidAdjustment
	}

	updated, err := s.api.AdjustStock(ctx, productID, adjustment, reason)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == updated.ID {
			s.products[i] = *updated
		}
	}
	if s.current != nil && s.current.ID == updated.ID {
		s.current = updated
	}
	s.mu.Unlock()

	s.notices.Publish(NoticeSuccess, "stock updated for "+updated.Name)
	return nil
}

// Reset очищает состояние хранилища при выходе пользователя.
func (s *Inventory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = nil
	s.current = nil
	s.filter = api.InventoryFilter{}
	s.pagination = model.Pagination{}
	s.loading = false
	s.err = ""
}

// Products возвращает копию списка товаров.
func (s *Inventory) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

// Current возвращает копию текущего товара или nil.
func (s *Inventory) Current() *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// LowStock возвращает товары с низким или нулевым остатком.
// Статус вычисляется при каждом вызове.
func (s *Inventory) LowStock() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Product
	for _, p := range s.products {
		if p.StockStatus() != model.StockStatusInStock {
			out = append(out, p)
		}
	}
	return out
}

// Pagination возвращает метаданные последнего успешного списка.
func (s *Inventory) Pagination() model.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Loading сообщает, выполняется ли сейчас запрос.
func (s *Inventory) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает текст последней ошибки запроса или пустую строку.
func (s *Inventory) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
