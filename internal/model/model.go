// Package model содержит доменные сущности клиента сборщика заказов.
package model

import "time"

// Role описывает роль пользователя в системе.
type Role string

const (
	RolePicker Role = "picker"
	RoleAdmin  Role = "admin"
)

// IsAllowed сообщает, разрешён ли доступ к приложению для данной роли.
func (r Role) IsAllowed() bool {
	return r == RolePicker || r == RoleAdmin
}

// User представляет текущего пользователя сессии.
type User struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	EmployeeID  string `json:"employeeId"`
	Role        Role   `json:"role"`
	IsAvailable bool   `json:"isAvailable"`
	StoreID     string `json:"storeId,omitempty"`
}

// OrderStatus описывает статус заказа в процессе сборки.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusAssigned         OrderStatus = "assigned"
	OrderStatusPicking          OrderStatus = "picking"
	OrderStatusPicked           OrderStatus = "picked"
	OrderStatusReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderStatusOutForDelivery   OrderStatus = "out_for_delivery"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// Priority описывает приоритет заказа или уведомления.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ItemIssue описывает проблему, зафиксированную сборщиком по позиции заказа.
type ItemIssue struct {
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reportedAt"`
}

// OrderItem описывает одну позицию заказа.
type OrderItem struct {
	ID            string     `json:"_id"`
	ProductID     string     `json:"product"`
	ProductName   string     `json:"productName,omitempty"`
	Quantity      int        `json:"quantity"`
	Picked        bool       `json:"picked"`
	PickedFromBin string     `json:"pickedFromBin,omitempty"`
	Issue         *ItemIssue `json:"issue,omitempty"`
}

// Resolved сообщает, закрыта ли позиция: собрана либо помечена проблемой.
func (i OrderItem) Resolved() bool {
	return i.Picked || i.Issue != nil
}

// Order описывает заказ и состояние его сборки.
type Order struct {
	ID          string               `json:"_id"`
	OrderNumber string               `json:"orderNumber"`
	Status      OrderStatus          `json:"orderStatus"`
	Priority    Priority             `json:"priority"`
	Items       []OrderItem          `json:"items"`
	AssignedTo  string               `json:"assignedTo,omitempty"`
	Timeline    map[string]time.Time `json:"timeline,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ReadyToComplete сообщает, можно ли завершить заказ: каждая позиция
// должна быть собрана или помечена проблемой. Заказ без позиций не готов.
func (o Order) ReadyToComplete() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if !item.Resolved() {
			return false
		}
	}
	return true
}

// PickedCount возвращает количество собранных позиций заказа.
func (o Order) PickedCount() int {
	n := 0
	for _, item := range o.Items {
		if item.Picked {
			n++
		}
	}
	return n
}

// BinLocation описывает физическое расположение ячейки на складе.
type BinLocation struct {
	Zone     string `json:"zone"`
	Aisle    string `json:"aisle"`
	Position string `json:"position"`
}

// BinStock описывает остаток одного товара в ячейке.
type BinStock struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Bin описывает складскую ячейку.
type Bin struct {
	ID           string      `json:"_id"`
	Code         string      `json:"code"`
	Location     BinLocation `json:"location"`
	Type         string      `json:"type"`
	Capacity     int         `json:"capacity"`
	CurrentStock []BinStock  `json:"currentStock"`
}

// StockTotal возвращает суммарный остаток всех товаров в ячейке.
func (b Bin) StockTotal() int {
	total := 0
	for _, s := range b.CurrentStock {
		total += s.Quantity
	}
	return total
}

// OverCapacity сообщает, превышает ли остаток вместимость ячейки.
// Проверка носит справочный характер и клиентом не навязывается.
func (b Bin) OverCapacity() bool {
	return b.Capacity > 0 && b.StockTotal() > b.Capacity
}

// StockStatus описывает производный статус остатка товара.
type StockStatus string

const (
	StockStatusInStock  StockStatus = "in_stock"
	StockStatusLowStock StockStatus = "low_stock"
	StockStatusOutStock StockStatus = "out_of_stock"
)

// Product описывает товар и его остаток.
type Product struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"minStockLevel"`
}

// StockStatusOf вычисляет статус остатка по количеству и минимальному порогу.
// Значение не хранится и пересчитывается при каждом чтении.
func StockStatusOf(quantity, minStock int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutStock
	case quantity <= minStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// StockStatus возвращает производный статус остатка товара.
func (p Product) StockStatus() StockStatus {
	return StockStatusOf(p.Quantity, p.MinStock)
}

// MovementType описывает тип движения остатка по ячейке.
type MovementType string

const (
	MovementAdd         MovementType = "add"
	MovementRemove      MovementType = "remove"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
)

// StockMovement описывает одно движение остатка по ячейке.
type StockMovement struct {
	ID        string       `json:"_id"`
	BinID     string       `json:"bin"`
	ProductID string       `json:"product"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NotificationType описывает тип уведомления.
type NotificationType string

const (
	NotificationOrderAvailable NotificationType = "order_available"
	NotificationOrderAssigned  NotificationType = "order_assigned"
	NotificationOrderCompleted NotificationType = "order_completed"
	NotificationStockLow       NotificationType = "stock_low"
	NotificationStockOut       NotificationType = "stock_out"
	NotificationSystemAlert    NotificationType = "system_alert"
)

// Notification описывает уведомление, адресованное пользователю.
type Notification struct {
	ID        string           `json:"_id"`
	Type      NotificationType `json:"type"`
	Priority  Priority         `json:"priority"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	OrderID   string           `json:"orderId,omitempty"`
	ProductID string           `json:"productId,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Pagination содержит метаданные постраничного списка.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
