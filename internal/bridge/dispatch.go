package bridge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/picker-system/internal/model"
)

type orderUpdatePayload struct {
	OrderID  string               `json:"orderId"`
	Status   model.OrderStatus    `json:"orderStatus"`
	Timeline map[string]time.Time `json:"timeline"`
}

type inventoryUpdatePayload struct {
	Type        string `json:"type"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

type pickerAssignmentPayload struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type urgentAlertPayload struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

func (b *Bridge) dispatch(ev Event) {
	switch ev.Name {
	case "new-notification":
		var n model.Notification
		if err := json.Unmarshal(ev.Data, &n); err != nil {
			b.logger.Warn("bad new-notification payload", zap.Error(err))
			return
		}
		n.IsRead = false
		b.notifications.Add(n)

	case "new-order":
		var order model.Order
		if err := json.Unmarshal(ev.Data, &order); err != nil {
			b.logger.Warn("bad new-order payload", zap.Error(err))
			return
		}
		if order.AssignedTo != "" {
			return
		}
		b.orders.PrependAvailable(order)
		b.notifications.Add(b.synthesize(
			model.NotificationOrderAvailable,
			order.Priority,
			"order "+order.OrderNumber+" is available",
			order.ID,
			"",
		))

	case "order-update":
		var p orderUpdatePayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			b.logger.Warn("bad order-update payload", zap.Error(err))
			return
		}
		b.orders.ApplyStatusUpdate(p.OrderID, p.Status, p.Timeline)

	case "inventory-update":
		var p inventoryUpdatePayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			b.logger.Warn("bad inventory-update payload", zap.Error(err))
			return
		}
		if p.Type != "low_stock" {
			return
		}
		b.notifications.Add(b.synthesize(
			model.NotificationStockLow,
			model.PriorityHigh,
			"low stock: "+p.ProductName,
			"",
			p.ProductID,
		))

	case "picker-assignment":
		var p pickerAssignmentPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			b.logger.Warn("bad picker-assignment payload", zap.Error(err))
			return
		}
		b.notifications.Add(b.synthesize(
			model.NotificationOrderAssigned,
			model.PriorityMedium,
			"order "+p.OrderNumber+" assigned to you",
			p.OrderID,
			"",
		))

	case "urgent-alert":
		var p urgentAlertPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			b.logger.Warn("bad urgent-alert payload", zap.Error(err))
			return
		}
		b.notifications.Add(b.synthesize(
			model.NotificationSystemAlert,
			model.PriorityUrgent,
			p.Message,
			p.OrderID,
			"",
		))

	default:
		b.logger.Debug("unknown socket event", zap.String("event", ev.Name))
	}
}

// synthesize собирает уведомление, рождённое на клиенте из события сокета.
func (b *Bridge) synthesize(t model.NotificationType, priority model.Priority, message, orderID, productID string) model.Notification {
	if priority == "" {
		priority = model.PriorityMedium
	}
	return model.Notification{
		ID:        uuid.NewString(),
		Type:      t,
		Priority:  priority,
		Message:   message,
		OrderID:   orderID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
}
