package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/model"
	"github.com/mmeshcher/picker-system/internal/validation"
)

// Ошибки валидации операций с ячейками. Запрос к серверу не выполняется.
var (
	ErrInvalidBinCode  = errors.New("bin code has invalid format")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// BinsAPI определяет операции API, используемые хранилищем ячеек.
type BinsAPI interface {
	Bins(ctx context.Context, f api.BinFilter) (*api.BinsPage, error)
	BinDetails(ctx context.Context, id string) (*model.Bin, error)
	ScanBin(ctx context.Context, code string) (*model.Bin, error)
	BinAddStock(ctx context.Context, binID, productID string, quantity int) (*model.Bin, error)
	BinRemoveStock(ctx context.Context, binID, productID string, quantity int) (*model.Bin, error)
	TransferStock(ctx context.Context, fromBinID, toBinID, productID string, quantity int) (*api.TransferResult, error)
	BinHistory(ctx context.Context, binID string) ([]model.StockMovement, error)
}

// ScanRecorder записывает успешные сканирования в локальную историю.
type ScanRecorder interface {
	AppendScan(ctx context.Context, code, binID string) error
}

// Bins хранит складские ячейки, текущую ячейку и историю движений по ней.
type Bins struct {
	mu      sync.RWMutex
	api     BinsAPI
	scans   ScanRecorder
	notices *Notices

	bins       []model.Bin
	current    *model.Bin
	history    []model.StockMovement
	filter     api.BinFilter
	pagination model.Pagination
	loading    bool
	err        string
}

// NewBins создаёт хранилище ячеек. scans может быть nil,
// тогда история сканирований не ведётся.
func NewBins(client BinsAPI, scans ScanRecorder, notices *Notices) *Bins {
	return &Bins{
		api:     client,
		scans:   scans,
		notices: notices,
	}
}

// SetFilter устанавливает параметры выборки для последующих запросов списка.
func (s *Bins) SetFilter(f api.BinFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Fetch запрашивает список ячеек и заменяет его целиком.
// При ошибке последний успешный список сохраняется.
func (s *Bins) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	f := s.filter
	s.mu.Unlock()

	page, err := s.api.Bins(ctx, f)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.bins = page.Bins
	s.pagination = page.Pagination
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// FetchOne запрашивает одну ячейку и заменяет кеш текущей ячейки.
func (s *Bins) FetchOne(ctx context.Context, id string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	bin, err := s.api.BinDetails(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.current = bin
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

// Scan находит ячейку по отсканированному коду, делает её текущей
// и записывает сканирование в локальную историю.
func (s *Bins) Scan(ctx context.Context, code string) (*model.Bin, error) {
	if !validation.IsValidBinCode(code) {
		return nil, ErrInvalidBinCode
	}

	bin, err := s.api.ScanBin(ctx, code)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.current = bin
	s.mu.Unlock()

	if s.scans != nil {
		_ = s.scans.AppendScan(ctx, code, bin.ID)
	}

	cp := *bin
	return &cp, nil
}

// AddStock добавляет остаток товара в ячейку.
func (s *Bins) AddStock(ctx context.Context, binID, productID string, quantity int) error {
	if !validation.IsValidQuantity(quantity) {
		return ErrInvalidQuantity
	}

	updated, err := s.api.BinAddStock(ctx, binID, productID, quantity)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "stock added to "+updated.Code)
	return nil
}

// RemoveStock списывает остаток товара из ячейки.
func (s *Bins) RemoveStock(ctx context.Context, binID, productID string, quantity int) error {
	if !validation.IsValidQuantity(quantity) {
		return ErrInvalidQuantity
	}

	updated, err := s.api.BinRemoveStock(ctx, binID, productID, quantity)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(updated)
	s.notices.Publish(NoticeSuccess, "stock removed from "+updated.Code)
	return nil
}

// Transfer переносит остаток товара между ячейками и обновляет обе в кешах.
func (s *Bins) Transfer(ctx context.Context, fromBinID, toBinID, productID string, quantity int) error {
	if !validation.IsValidQuantity(quantity) {
		return ErrInvalidQuantity
	}

	res, err := s.api.TransferStock(ctx, fromBinID, toBinID, productID, quantity)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.apply(&res.From)
	s.apply(&res.To)
	s.notices.Publish(NoticeSuccess, "stock transferred to "+res.To.Code)
	return nil
}

// FetchHistory запрашивает историю движений остатков по ячейке.
func (s *Bins) FetchHistory(ctx context.Context, binID string) error {
	movements, err := s.api.BinHistory(ctx, binID)
	if err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.history = movements
	s.err = ""
	s.mu.Unlock()

	return nil
}

// Reset очищает состояние хранилища при выходе пользователя.
func (s *Bins) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bins = nil
	s.current = nil
	s.history = nil
	s.filter = api.BinFilter{}
	s.pagination = model.Pagination{}
	s.loading = false
	s.err = ""
}

// Bins возвращает копию списка ячеек.
func (s *Bins) Bins() []model.Bin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Bin(nil), s.bins...)
}

// Current возвращает копию текущей ячейки или nil.
func (s *Bins) Current() *model.Bin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// History возвращает копию истории движений текущей выборки.
func (s *Bins) History() []model.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.StockMovement(nil), s.history...)
}

// Pagination возвращает метаданные последнего успешного списка.
func (s *Bins) Pagination() model.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Loading сообщает, выполняется ли сейчас запрос.
func (s *Bins) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает текст последней ошибки запроса или пустую строку.
func (s *Bins) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// apply заменяет ячейку во всех кешах, где она присутствует.
func (s *Bins) apply(updated *model.Bin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bins {
		if s.bins[i].ID == updated.ID {
			s.bins[i] = *updated
		}
	}
	if s.current != nil && s.current.ID == updated.ID {
		cp := *updated
		s.current = &cp
	}
}
