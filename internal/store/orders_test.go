package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/model"
)

type stubOrdersAPI struct {
	availableResp *api.OrdersPage
	availableErr  error

	mineResp *api.OrdersPage
	mineErr  error

	detailsResp *model.Order
	detailsErr  error

	acceptResp  *model.Order
	acceptErr   error
	acceptCalls int

	startResp *model.Order
	startErr  error

	pickResp *model.Order
	pickErr  error

	issueResp *model.Order
	issueErr  error

	completeResp  *model.Order
	completeErr   error
	completeCalls int
}

func (s *stubOrdersAPI) AvailableOrders(ctx context.Context, f api.OrderFilter) (*api.OrdersPage, error) {
	return s.availableResp, s.availableErr
}

func (s *stubOrdersAPI) MyOrders(ctx context.Context, f api.OrderFilter) (*api.OrdersPage, error) {
	return s.mineResp, s.mineErr
}

func (s *stubOrdersAPI) OrderDetails(ctx context.Context, id string) (*model.Order, error) {
	return s.detailsResp, s.detailsErr
}

func (s *stubOrdersAPI) AcceptOrder(ctx context.Context, id string) (*model.Order, error) {
	s.acceptCalls++
	return s.acceptResp, s.acceptErr
}

func (s *stubOrdersAPI) StartPicking(ctx context.Context, id string) (*model.Order, error) {
	return s.startResp, s.startErr
}

func (s *stubOrdersAPI) PickItem(ctx context.Context, orderID, itemID, binCode string) (*model.Order, error) {
	return s.pickResp, s.pickErr
}

func (s *stubOrdersAPI) ReportItemIssue(ctx context.Context, orderID, itemID, reason string) (*model.Order, error) {
	return s.issueResp, s.issueErr
}

func (s *stubOrdersAPI) CompleteOrder(ctx context.Context, id string) (*model.Order, error) {
	s.completeCalls++
	return s.completeResp, s.completeErr
}

func testOrder(id string) model.Order {
	return model.Order{
		ID:          id,
		OrderNumber: "N-" + id,
		Status:      model.OrderStatusPending,
		Items: []model.OrderItem{
			{ID: id + "-i1", ProductID: "p1", Quantity: 2},
		},
	}
}

func TestFetchAvailable_ReplacesList(t *testing.T) {
	o1 := testOrder("o1")
	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{
			Orders:     []model.Order{o1},
			Pagination: model.Pagination{Page: 1, Total: 1},
		},
	}
	s := NewOrders(stub, NewNotices(4))

	if err := s.FetchAvailable(context.Background()); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}

	got := s.Available()
	if len(got) != 1 || got[0].ID != "o1" || got[0].Status != model.OrderStatusPending {
		t.Fatalf("unexpected available orders: %+v", got)
	}
	if len(got[0].Items) != 1 || got[0].Items[0].ProductID != "p1" {
		t.Fatalf("item data changed: %+v", got[0].Items)
	}
	if s.Loading() {
		t.Fatalf("loading flag not cleared")
	}
	if s.Err() != "" {
		t.Fatalf("error not cleared: %q", s.Err())
	}
}

func TestFetchAvailable_ErrorKeepsLastGood(t *testing.T) {
	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{Orders: []model.Order{testOrder("o1")}},
	}
	s := NewOrders(stub, NewNotices(4))

	if err := s.FetchAvailable(context.Background()); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}

	stub.availableResp = nil
	stub.availableErr = errors.New("network down")

	if err := s.FetchAvailable(context.Background()); err == nil {
		t.Fatalf("expected error from failed fetch")
	}

	if got := s.Available(); len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("last-good list lost: %+v", got)
	}
	if s.Err() != "network down" {
		t.Fatalf("error field = %q, want network down", s.Err())
	}
	if s.Loading() {
		t.Fatalf("loading flag not cleared after error")
	}
}

func TestAccept_MovesOrderExactlyOnce(t *testing.T) {
	o1 := testOrder("o1")
	accepted := o1
	accepted.Status = model.OrderStatusAssigned
	accepted.AssignedTo = "u1"

	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{Orders: []model.Order{o1}},
		acceptResp:    &accepted,
	}
	notices := NewNotices(4)
	s := NewOrders(stub, notices)

	if err := s.FetchAvailable(context.Background()); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}

	if err := s.Accept(context.Background(), "o1"); err != nil {
		t.Fatalf("Accept error: %v", err)
	}

	if got := s.Available(); len(got) != 0 {
		t.Fatalf("available must be empty after accept, got %+v", got)
	}

	mine := s.Mine()
	if len(mine) != 1 || mine[0].ID != "o1" {
		t.Fatalf("mine must contain o1 exactly once, got %+v", mine)
	}
	if len(mine[0].Items) != 1 || mine[0].Items[0].ProductID != "p1" || mine[0].Items[0].Quantity != 2 {
		t.Fatalf("item data changed on accept: %+v", mine[0].Items)
	}

	// Повторное принятие после успеха не создаёт дубликата.
	if err := s.Accept(context.Background(), "o1"); err != nil {
		t.Fatalf("repeated Accept error: %v", err)
	}
	if mine := s.Mine(); len(mine) != 1 {
		t.Fatalf("mine must still contain o1 exactly once, got %+v", mine)
	}

	select {
	case n := <-notices.C():
		if n.Level != NoticeSuccess {
			t.Fatalf("expected success notice, got %+v", n)
		}
	default:
		t.Fatalf("expected a notice after accept")
	}
}

func TestAccept_ErrorLeavesCachesUntouched(t *testing.T) {
	o1 := testOrder("o1")
	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{Orders: []model.Order{o1}},
		acceptErr:     errors.New("order already assigned"),
	}
	notices := NewNotices(4)
	s := NewOrders(stub, notices)

	if err := s.FetchAvailable(context.Background()); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}

	if err := s.Accept(context.Background(), "o1"); err == nil {
		t.Fatalf("expected accept error")
	}

	if got := s.Available(); len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("available changed on failed accept: %+v", got)
	}
	if got := s.Mine(); len(got) != 0 {
		t.Fatalf("mine changed on failed accept: %+v", got)
	}

	select {
	case n := <-notices.C():
		if n.Level != NoticeError {
			t.Fatalf("expected error notice, got %+v", n)
		}
	default:
		t.Fatalf("expected an error notice")
	}
}

func TestPickItem_PatchesEveryCacheHoldingID(t *testing.T) {
	o1 := testOrder("o1")
	o2 := testOrder("o2")

	updated := o1
	updated.Status = model.OrderStatusPicking
	updated.Items = []model.OrderItem{
		{ID: "o1-i1", ProductID: "p1", Quantity: 2, Picked: true, PickedFromBin: "A-01-03"},
	}

	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{Orders: []model.Order{o2}},
		mineResp:      &api.OrdersPage{Orders: []model.Order{o1, o2}},
		detailsResp:   &o1,
		pickResp:      &updated,
	}
	s := NewOrders(stub, NewNotices(8))

	ctx := context.Background()
	if err := s.FetchAvailable(ctx); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}
	if err := s.FetchMine(ctx); err != nil {
		t.Fatalf("FetchMine error: %v", err)
	}
	if err := s.FetchOne(ctx, "o1"); err != nil {
		t.Fatalf("FetchOne error: %v", err)
	}

	if err := s.PickItem(ctx, "o1", "o1-i1", "A-01-03"); err != nil {
		t.Fatalf("PickItem error: %v", err)
	}

	mine := s.Mine()
	if mine[0].Status != model.OrderStatusPicking || !mine[0].Items[0].Picked {
		t.Fatalf("mine entry not patched: %+v", mine[0])
	}
	if mine[0].Items[0].PickedFromBin != "A-01-03" {
		t.Fatalf("pickedFromBin not patched: %+v", mine[0].Items[0])
	}

	current := s.Current()
	if current == nil || current.Status != model.OrderStatusPicking {
		t.Fatalf("current not patched: %+v", current)
	}

	// Кеши без этого заказа не меняются.
	if mine[1].ID != "o2" || mine[1].Status != model.OrderStatusPending {
		t.Fatalf("unrelated order changed: %+v", mine[1])
	}
	if avail := s.Available(); avail[0].ID != "o2" || avail[0].Status != model.OrderStatusPending {
		t.Fatalf("unrelated available order changed: %+v", avail[0])
	}
}

func TestComplete_NotReadySkipsRequest(t *testing.T) {
	o1 := testOrder("o1")
	stub := &stubOrdersAPI{
		mineResp: &api.OrdersPage{Orders: []model.Order{o1}},
	}
	s := NewOrders(stub, NewNotices(4))

	if err := s.FetchMine(context.Background()); err != nil {
		t.Fatalf("FetchMine error: %v", err)
	}

	err := s.Complete(context.Background(), "o1")
	if !errors.Is(err, ErrOrderNotReady) {
		t.Fatalf("expected ErrOrderNotReady, got %v", err)
	}
	if stub.completeCalls != 0 {
		t.Fatalf("complete request must not be issued, got %d calls", stub.completeCalls)
	}
}

func TestComplete_ReadyOrder(t *testing.T) {
	o1 := testOrder("o1")
	o1.Items[0].Picked = true

	completed := o1
	completed.Status = model.OrderStatusPicked

	stub := &stubOrdersAPI{
		mineResp:     &api.OrdersPage{Orders: []model.Order{o1}},
		completeResp: &completed,
	}
	s := NewOrders(stub, NewNotices(4))

	if err := s.FetchMine(context.Background()); err != nil {
		t.Fatalf("FetchMine error: %v", err)
	}
	if err := s.Complete(context.Background(), "o1"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if stub.completeCalls != 1 {
		t.Fatalf("complete calls = %d, want 1", stub.completeCalls)
	}
	if mine := s.Mine(); mine[0].Status != model.OrderStatusPicked {
		t.Fatalf("mine entry not patched after complete: %+v", mine[0])
	}
}

func TestPrependAvailable_IgnoresDuplicate(t *testing.T) {
	s := NewOrders(&stubOrdersAPI{}, NewNotices(4))

	s.PrependAvailable(testOrder("o1"))
	s.PrependAvailable(testOrder("o2"))
	s.PrependAvailable(testOrder("o1"))

	got := s.Available()
	if len(got) != 2 {
		t.Fatalf("available size = %d, want 2", len(got))
	}
	if got[0].ID != "o2" || got[1].ID != "o1" {
		t.Fatalf("unexpected order of prepends: %+v", got)
	}
}

func TestApplyStatusUpdate_PatchesStatusAndTimeline(t *testing.T) {
	o1 := testOrder("o1")
	o2 := testOrder("o2")
	stub := &stubOrdersAPI{
		mineResp:    &api.OrdersPage{Orders: []model.Order{o1, o2}},
		detailsResp: &o1,
	}
	s := NewOrders(stub, NewNotices(4))

	ctx := context.Background()
	if err := s.FetchMine(ctx); err != nil {
		t.Fatalf("FetchMine error: %v", err)
	}
	if err := s.FetchOne(ctx, "o1"); err != nil {
		t.Fatalf("FetchOne error: %v", err)
	}

	pickedAt := time.Now().Truncate(time.Second)
	s.ApplyStatusUpdate("o1", model.OrderStatusPicked, map[string]time.Time{"pickedAt": pickedAt})

	mine := s.Mine()
	if mine[0].Status != model.OrderStatusPicked {
		t.Fatalf("mine status not patched: %+v", mine[0])
	}
	if !mine[0].Timeline["pickedAt"].Equal(pickedAt) {
		t.Fatalf("timeline not patched: %+v", mine[0].Timeline)
	}
	if mine[1].Status != model.OrderStatusPending {
		t.Fatalf("unrelated order patched: %+v", mine[1])
	}

	current := s.Current()
	if current.Status != model.OrderStatusPicked {
		t.Fatalf("current status not patched: %+v", current)
	}
}

func TestReset_ClearsState(t *testing.T) {
	stub := &stubOrdersAPI{
		availableResp: &api.OrdersPage{Orders: []model.Order{testOrder("o1")}},
	}
	s := NewOrders(stub, NewNotices(4))

	if err := s.FetchAvailable(context.Background()); err != nil {
		t.Fatalf("FetchAvailable error: %v", err)
	}

	s.Reset()

	if got := s.Available(); len(got) != 0 {
		t.Fatalf("available not cleared: %+v", got)
	}
	if s.Current() != nil {
		t.Fatalf("current not cleared")
	}
}
