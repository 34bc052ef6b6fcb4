package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmeshcher/picker-system/internal/model"
)

// LoginResult содержит ответ сервера на успешный вход.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// OrdersPage содержит страницу списка заказов.
type OrdersPage struct {
	Orders     []model.Order    `json:"orders"`
	Pagination model.Pagination `json:"pagination"`
}

// ProductsPage содержит страницу списка товаров.
type ProductsPage struct {
	Products   []model.Product  `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

// BinsPage содержит страницу списка ячеек.
type BinsPage struct {
	Bins       []model.Bin      `json:"bins"`
	Pagination model.Pagination `json:"pagination"`
}

// TransferResult содержит обе ячейки после переноса остатка.
type TransferResult struct {
	From model.Bin `json:"fromBin"`
	To   model.Bin `json:"toBin"`
}

// OrderFilter описывает параметры выборки списка заказов.
type OrderFilter struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

func (f OrderFilter) values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	addPaging(q, f.Page, f.Limit)
	return q
}

// InventoryFilter описывает параметры выборки списка товаров.
type InventoryFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

func (f InventoryFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	addPaging(q, f.Page, f.Limit)
	return q
}

// BinFilter описывает параметры выборки списка ячеек.
type BinFilter struct {
	Zone  string
	Type  string
	Page  int
	Limit int
}

func (f BinFilter) values() url.Values {
	q := url.Values{}
	if f.Zone != "" {
		q.Set("zone", f.Zone)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	addPaging(q, f.Page, f.Limit)
	return q
}

func addPaging(q url.Values, page, limit int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

// Login выполняет вход по идентификатору сотрудника и паролю.
func (c *Client) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	body := map[string]string{
		"employeeId": employeeID,
		"password":   password,
	}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Profile запрашивает профиль текущего пользователя по токену сессии.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var res model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateAvailability меняет флаг готовности принимать новые заказы.
func (c *Client) UpdateAvailability(ctx context.Context, available bool) (*model.User, error) {
	body := map[string]bool{"isAvailable": available}
	var res model.User
	if err := c.do(ctx, http.MethodPut, "/api/auth/availability", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AvailableOrders запрашивает список доступных для принятия заказов.
func (c *Client) AvailableOrders(ctx context.Context, f OrderFilter) (*OrdersPage, error) {
	var res OrdersPage
	if err := c.do(ctx, http.MethodGet, "/api/orders/available", f.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MyOrders запрашивает список заказов, закреплённых за текущим сборщиком.
func (c *Client) MyOrders(ctx context.Context, f OrderFilter) (*OrdersPage, error) {
	var res OrdersPage
	if err := c.do(ctx, http.MethodGet, "/api/orders/my-orders", f.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// OrderDetails запрашивает один заказ по идентификатору.
func (c *Client) OrderDetails(ctx context.Context, id string) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+id, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AcceptOrder закрепляет доступный заказ за текущим сборщиком.
func (c *Client) AcceptOrder(ctx context.Context, id string) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+id+"/accept", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StartPicking переводит заказ в статус сборки.
func (c *Client) StartPicking(ctx context.Context, id string) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+id+"/start", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PickItem отмечает позицию заказа собранной из указанной ячейки.
func (c *Client) PickItem(ctx context.Context, orderID, itemID, binCode string) (*model.Order, error) {
	body := map[string]string{"binCode": binCode}
	var res model.Order
	path := "/api/orders/" + orderID + "/items/" + itemID + "/picked"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ReportItemIssue фиксирует проблему по позиции заказа.
func (c *Client) ReportItemIssue(ctx context.Context, orderID, itemID, reason string) (*model.Order, error) {
	body := map[string]string{"reason": reason}
	var res model.Order
	path := "/api/orders/" + orderID + "/items/" + itemID + "/issue"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CompleteOrder завершает сборку заказа.
func (c *Client) CompleteOrder(ctx context.Context, id string) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/"+id+"/complete", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Products запрашивает список товаров с учётом фильтров.
func (c *Client) Products(ctx context.Context, f InventoryFilter) (*ProductsPage, error) {
	var res ProductsPage
	if err := c.do(ctx, http.MethodGet, "/api/products", f.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ProductDetails запрашивает один товар по идентификатору.
func (c *Client) ProductDetails(ctx context.Context, id string) (*model.Product, error) {
	var res model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AdjustStock изменяет остаток товара на указанную величину.
func (c *Client) AdjustStock(ctx context.Context, productID string, adjustment int, reason string) (*model.Product, error) {
	body := map[string]any{
		"adjustment": adjustment,
		"reason":     reason,
	}
	var res model.Product
	if err := c.do(ctx, http.MethodPost, "/api/products/"+productID+"/stock", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Bins запрашивает список ячеек с учётом фильтров.
func (c *Client) Bins(ctx context.Context, f BinFilter) (*BinsPage, error) {
	var res BinsPage
	if err := c.do(ctx, http.MethodGet, "/api/bins", f.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BinDetails запрашивает одну ячейку по идентификатору.
func (c *Client) BinDetails(ctx context.Context, id string) (*model.Bin, error) {
	var res model.Bin
	if err := c.do(ctx, http.MethodGet, "/api/bins/"+id, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ScanBin находит ячейку по коду, полученному при сканировании QR.
func (c *Client) ScanBin(ctx context.Context, code string) (*model.Bin, error) {
	body := map[string]string{"code": code}
	var res model.Bin
	if err := c.do(ctx, http.MethodPost, "/api/bins/scan-qr", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BinAddStock добавляет остаток товара в ячейку.
func (c *Client) BinAddStock(ctx context.Context, binID, productID string, quantity int) (*model.Bin, error) {
	body := map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}
	var res model.Bin
	if err := c.do(ctx, http.MethodPost, "/api/bins/"+binID+"/add-stock", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BinRemoveStock списывает остаток товара из ячейки.
func (c *Client) BinRemoveStock(ctx context.Context, binID, productID string, quantity int) (*model.Bin, error) {
	body := map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}
	var res model.Bin
	if err := c.do(ctx, http.MethodPost, "/api/bins/"+binID+"/remove-stock", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TransferStock переносит остаток товара между ячейками.
func (c *Client) TransferStock(ctx context.Context, fromBinID, toBinID, productID string, quantity int) (*TransferResult, error) {
	body := map[string]any{
		"fromBinId": fromBinID,
		"toBinId":   toBinID,
		"productId": productID,
		"quantity":  quantity,
	}
	var res TransferResult
	if err := c.do(ctx, http.MethodPost, "/api/bins/transfer", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BinHistory запрашивает историю движений остатков по ячейке.
func (c *Client) BinHistory(ctx context.Context, binID string) ([]model.StockMovement, error) {
	var res []model.StockMovement
	if err := c.do(ctx, http.MethodGet, "/api/bins/"+binID+"/history", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Notifications запрашивает сохранённые уведомления пользователя.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var res []model.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}
