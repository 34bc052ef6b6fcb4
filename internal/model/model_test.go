package model

import (
	"testing"
	"time"
)

func TestReadyToComplete(t *testing.T) {
	issue := &ItemIssue{Reason: "damaged", ReportedAt: time.Now()}

	tests := []struct {
		name  string
		items []OrderItem
		ready bool
	}{
		{
			name:  "no items",
			items: nil,
			ready: false,
		},
		{
			name: "all picked",
			items: []OrderItem{
				{ID: "i1", Picked: true},
				{ID: "i2", Picked: true},
			},
			ready: true,
		},
		{
			name: "all flagged with issue",
			items: []OrderItem{
				{ID: "i1", Issue: issue},
				{ID: "i2", Issue: issue},
			},
			ready: true,
		},
		{
			name: "mixed picked and issue",
			items: []OrderItem{
				{ID: "i1", Picked: true},
				{ID: "i2", Issue: issue},
			},
			ready: true,
		},
		{
			name: "one item unresolved",
			items: []OrderItem{
				{ID: "i1", Picked: true},
				{ID: "i2"},
			},
			ready: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{ID: "o1", Items: tt.items}
			if got := o.ReadyToComplete(); got != tt.ready {
				t.Fatalf("ReadyToComplete() = %v, want %v", got, tt.ready)
			}
		})
	}
}

func TestStockStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minStock int
		want     StockStatus
	}{
		{
			name:     "zero quantity",
			quantity: 0,
			minStock: 5,
			want:     StockStatusOutStock,
		},
		{
			name:     "negative quantity",
			quantity: -1,
			minStock: 5,
			want:     StockStatusOutStock,
		},
		{
			name:     "at threshold",
			quantity: 5,
			minStock: 5,
			want:     StockStatusLowStock,
		},
		{
			name:     "above threshold",
			quantity: 6,
			minStock: 5,
			want:     StockStatusInStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StockStatusOf(tt.quantity, tt.minStock); got != tt.want {
				t.Fatalf("StockStatusOf(%d, %d) = %v, want %v", tt.quantity, tt.minStock, got, tt.want)
			}
		})
	}
}

func TestPickedCount(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ID: "i1", Picked: true},
		{ID: "i2"},
		{ID: "i3", Picked: true},
	}}
	if got := o.PickedCount(); got != 2 {
		t.Fatalf("PickedCount() = %d, want 2", got)
	}
}

func TestBinOverCapacity(t *testing.T) {
	b := Bin{
		Capacity: 10,
		CurrentStock: []BinStock{
			{ProductID: "p1", Quantity: 6},
			{ProductID: "p2", Quantity: 5},
		},
	}
	if !b.OverCapacity() {
		t.Fatalf("expected bin over capacity with total %d", b.StockTotal())
	}

	b.CurrentStock[1].Quantity = 4
	if b.OverCapacity() {
		t.Fatalf("bin at capacity must not be reported as overflowing")
	}

	unbounded := Bin{CurrentStock: []BinStock{{ProductID: "p1", Quantity: 100}}}
	if unbounded.OverCapacity() {
		t.Fatalf("bin without capacity limit must never overflow")
	}
}
