package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mmeshcher/picker-system/internal/model"
)

type stubNotificationsAPI struct {
	resp []model.Notification
	err  error
}

func (s *stubNotificationsAPI) Notifications(ctx context.Context) ([]model.Notification, error) {
	return s.resp, s.err
}

func TestUnreadCount_NeverDrifts(t *testing.T) {
	s := NewNotifications(nil)

	s.Add(model.Notification{ID: "n1", Type: model.NotificationOrderAvailable})
	s.Add(model.Notification{ID: "n2", Type: model.NotificationStockLow})

	if got := s.UnreadCount(); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}

	s.MarkAsRead("n1")
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread after MarkAsRead = %d, want 1", got)
	}

	// Повторная пометка того же уведомления ничего не меняет.
	s.MarkAsRead("n1")
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread after repeated MarkAsRead = %d, want 1", got)
	}

	s.MarkAllRead()
	if got := s.UnreadCount(); got != 0 {
		t.Fatalf("unread after MarkAllRead = %d, want 0", got)
	}

	s.Add(model.Notification{ID: "n3", Type: model.NotificationSystemAlert})
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread after new notification = %d, want 1", got)
	}

	for _, n := range s.Items() {
		if n.ID != "n3" && !n.IsRead {
			t.Fatalf("notification %s must stay read", n.ID)
		}
	}
}

func TestAdd_PrependsNewestFirst(t *testing.T) {
	s := NewNotifications(nil)

	s.Add(model.Notification{ID: "n1"})
	s.Add(model.Notification{ID: "n2"})
	s.Add(model.Notification{ID: "n3"})

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("items size = %d, want 3", len(items))
	}
	if items[0].ID != "n3" || items[1].ID != "n2" || items[2].ID != "n1" {
		t.Fatalf("unexpected ordering: %+v", items)
	}
}

func TestMarkAsRead_UnknownIDIsNoop(t *testing.T) {
	s := NewNotifications(nil)
	s.Add(model.Notification{ID: "n1"})

	s.MarkAsRead("missing")

	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}
}

func TestFetch_ReplacesCollection(t *testing.T) {
	stub := &stubNotificationsAPI{
		resp: []model.Notification{
			{ID: "n1", IsRead: true},
			{ID: "n2"},
		},
	}
	s := NewNotifications(stub)

	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got := s.UnreadCount(); got != 1 {
		t.Fatalf("unread = %d, want 1", got)
	}

	stub.resp = nil
	stub.err = errors.New("server error")

	if err := s.Fetch(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if got := len(s.Items()); got != 2 {
		t.Fatalf("last-good collection lost, size = %d", got)
	}
	if s.Err() != "server error" {
		t.Fatalf("error field = %q", s.Err())
	}
}
