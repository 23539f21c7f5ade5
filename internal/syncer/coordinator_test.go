package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/gateway"
	"github.com/mercadito/storefront/internal/testutil"
)

func pct(v float64) *float64 { return &v }

func seedItems() []cart.Item {
	return []cart.Item{
		{ID: 5, Name: "Poleron", Price: 10000, Quantity: 2, Stock: 5, Discount: pct(20)},
		{ID: 9, Name: "Gorro", Price: 5990, Quantity: 1, Stock: 2},
	}
}

func newCoordinator(t *testing.T, items []cart.Item, fake *testutil.FakeGateway) (*Coordinator, *cart.Store) {
	t.Helper()
	store := cart.NewStore(items, nil, nil)
	return New(store, fake, nil), store
}

func validationErr() error {
	return &gateway.Error{Kind: gateway.KindValidation, Status: 409, Message: "stock exceeded"}
}

func networkErr() error {
	return &gateway.Error{Kind: gateway.KindNetwork, Err: errors.New("dial tcp: connection refused")}
}

func authErr() error {
	return &gateway.Error{Kind: gateway.KindAuth, Status: 401, Message: "token expired"}
}

func TestAddItem_NewLineConfirmsWithQuantityOne(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, store := newCoordinator(t, nil, fake)

	res := c.AddItem(context.Background(), cart.Item{ID: 3, Name: "Polera", Price: 8000, Stock: 4})
	require.True(t, res.Success)
	c.Wait()

	require.Len(t, store.Items(), 1)
	assert.Equal(t, 1, fake.CallCount("add"))
	assert.Zero(t, fake.CallCount("set"))
}

func TestAddItem_ConflictFallsBackToQuantityUpdate(t *testing.T) {
	fake := &testutil.FakeGateway{
		Fail: map[string]error{"add": &gateway.Error{Kind: gateway.KindValidation, Status: 409, Message: "already in cart"}},
	}
	c, store := newCoordinator(t, seedItems(), fake)

	res := c.AddItem(context.Background(), cart.Item{ID: 9, Name: "Gorro", Price: 5990, Stock: 2})
	require.True(t, res.Success)
	c.Wait()

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].Quantity, "duplicate add increments the existing line")
	assert.Equal(t, 1, fake.CallCount("set"), "conflicting add converges on a quantity update")
	assert.NoError(t, c.LastSyncError())
}

func TestAddItem_NetworkFailureKeepsLocalAdd(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"add": networkErr()}}
	c, store := newCoordinator(t, nil, fake)

	res := c.AddItem(context.Background(), cart.Item{ID: 3, Name: "Polera", Price: 8000, Stock: 4})
	require.True(t, res.Success)
	c.Wait()

	assert.Len(t, store.Items(), 1, "add stays applied despite network failure")
	assert.NoError(t, c.LastSyncError())
}

func TestAddItem_LocalFailureSkipsRemoteCall(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, _ := newCoordinator(t, nil, fake)

	res := c.AddItem(context.Background(), cart.Item{ID: 3, Name: "Polera", Price: 8000, Stock: 0})
	require.False(t, res.Success)
	c.Wait()

	assert.Zero(t, fake.CallCount("add"))
}

func TestUpdateQuantity_ReconcilesWithServerSnapshot(t *testing.T) {
	fake := &testutil.FakeGateway{
		SetSnapshot: []cart.Item{
			// Server recomputed a fresher stock bound.
			{ID: 5, Name: "Poleron", Price: 10000, Quantity: 4, Stock: 7, Discount: pct(20)},
		},
	}
	c, store := newCoordinator(t, seedItems(), fake)

	res := c.UpdateQuantity(context.Background(), 5, 4)
	require.True(t, res.Success)
	c.Wait()

	items := store.Items()
	require.Len(t, items, 1, "server snapshot is authoritative")
	assert.Equal(t, 7, items[0].Stock)
	assert.Equal(t, 4, items[0].Quantity)
	assert.NoError(t, c.LastSyncError())
}

func TestUpdateQuantity_ValidationFailureRestoresExactSnapshot(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"set": validationErr()}}
	before := seedItems()
	c, store := newCoordinator(t, before, fake)

	res := c.UpdateQuantity(context.Background(), 5, 4)
	require.True(t, res.Success, "optimistic apply succeeds before confirmation")
	c.Wait()

	assert.Equal(t, before, store.Items(), "revert must restore the exact pre-mutation list")
	assert.Error(t, c.LastSyncError(), "revert-worthy failures are surfaced")
}

func TestUpdateQuantity_LocalFailureSkipsRemoteCall(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, _ := newCoordinator(t, seedItems(), fake)

	res := c.UpdateQuantity(context.Background(), 9, 50) // above stock bound
	require.False(t, res.Success)
	c.Wait()

	assert.Zero(t, fake.CallCount("set"), "a locally rejected mutation must not reach the gateway")
}

func TestRemoveItem_NetworkFailureKeepsLocalRemoval(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"remove": networkErr()}}
	c, store := newCoordinator(t, seedItems(), fake)

	res := c.RemoveItem(context.Background(), 5)
	require.True(t, res.Success)
	c.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].ID, "removal stays applied despite network failure")
	assert.NoError(t, c.LastSyncError(), "keep-local failures are log-only")
}

func TestRemoveItem_ValidationFailureRevertsRemoval(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"remove": validationErr()}}
	before := seedItems()
	c, store := newCoordinator(t, before, fake)

	c.RemoveItem(context.Background(), 5)
	c.Wait()

	assert.Equal(t, before, store.Items())
	assert.Error(t, c.LastSyncError())
}

func TestClearCart_AuthFailureKeepsLocalClear(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"clear": authErr()}}
	c, store := newCoordinator(t, seedItems(), fake)

	c.ClearCart(context.Background())
	c.Wait()

	assert.Empty(t, store.Items(), "clear stays applied for an unauthenticated session")
	assert.NoError(t, c.LastSyncError())
}

func TestClearCart_UnknownFailureKeepsLocalClear(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"clear": errors.New("weird proxy response")}}
	c, store := newCoordinator(t, seedItems(), fake)

	c.ClearCart(context.Background())
	c.Wait()

	assert.Empty(t, store.Items(), "unknown failures default to keep-local")
}

func TestSyncCart_EmptyRemoteKeepsPopulatedLocalCart(t *testing.T) {
	fake := &testutil.FakeGateway{Cart: nil}
	local := []cart.Item{{ID: 1, Name: "A", Price: 100, Quantity: 2, Stock: 5}}
	c, store := newCoordinator(t, local, fake)

	require.NoError(t, c.SyncCart(context.Background()))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity, "guest-built cart survives an empty server cart")
}

func TestSyncCart_PopulatedRemoteReplacesLocal(t *testing.T) {
	fake := &testutil.FakeGateway{
		Cart: []cart.Item{{ID: 2, Name: "B", Price: 200, Quantity: 1, Stock: 3}},
	}
	local := []cart.Item{{ID: 1, Name: "A", Price: 100, Quantity: 2, Stock: 5}}
	c, store := newCoordinator(t, local, fake)

	require.NoError(t, c.SyncCart(context.Background()))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
}

func TestSyncCart_EmptyRemoteReplacesEmptyLocal(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, store := newCoordinator(t, nil, fake)

	require.NoError(t, c.SyncCart(context.Background()))
	assert.Empty(t, store.Items())
}

func TestSyncCart_FetchFailureLeavesLocalUntouched(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"fetch": networkErr()}}
	local := seedItems()
	c, store := newCoordinator(t, local, fake)

	err := c.SyncCart(context.Background())
	require.Error(t, err)

	assert.Equal(t, local, store.Items())
	assert.Error(t, c.LastSyncError(), "fetch failures are recorded for later surfacing")
}

func TestSyncCart_SuccessClearsRecordedError(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"fetch": networkErr()}}
	c, _ := newCoordinator(t, nil, fake)

	require.Error(t, c.SyncCart(context.Background()))
	require.Error(t, c.LastSyncError())

	fake.Fail = nil
	require.NoError(t, c.SyncCart(context.Background()))
	assert.NoError(t, c.LastSyncError())
}

func TestEnsureSynced_OneShotPerSession(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, _ := newCoordinator(t, nil, fake)
	ctx := context.Background()

	require.NoError(t, c.EnsureSynced(ctx))
	require.NoError(t, c.EnsureSynced(ctx))
	require.NoError(t, c.EnsureSynced(ctx))
	assert.Equal(t, 1, fake.CallCount("fetch"), "same session must sync once")

	c.SessionEnded()
	require.NoError(t, c.EnsureSynced(ctx))
	assert.Equal(t, 2, fake.CallCount("fetch"), "logout->login re-arms the sync")
}

func TestEnsureSynced_FailureDoesNotConsumeArming(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"fetch": networkErr()}}
	c, _ := newCoordinator(t, nil, fake)
	ctx := context.Background()

	require.Error(t, c.EnsureSynced(ctx))

	fake.Fail = nil
	require.NoError(t, c.EnsureSynced(ctx))
	assert.Equal(t, 2, fake.CallCount("fetch"))
}

func TestPushCart_ConflictFallsBackToQuantityUpdate(t *testing.T) {
	fake := &testutil.FakeGateway{
		Fail: map[string]error{"add": &gateway.Error{Kind: gateway.KindValidation, Status: 409, Message: "already in cart"}},
	}
	c, _ := newCoordinator(t, seedItems(), fake)

	require.NoError(t, c.PushCart(context.Background()))
	assert.Equal(t, 2, fake.CallCount("add"))
	assert.Equal(t, 2, fake.CallCount("set"), "each conflicting line falls back to a quantity update")
}

func TestPushCart_NetworkFailureAborts(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"add": networkErr()}}
	c, _ := newCoordinator(t, seedItems(), fake)

	err := c.PushCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, gateway.KindNetwork, gateway.KindOf(err))
}

func TestCheckout_PushesCreatesOrderAndClearsLocalCart(t *testing.T) {
	fake := &testutil.FakeGateway{
		Order: gateway.Order{ID: 77, Number: "ORD-2026-077", Status: "created", Total: 25990},
	}
	c, store := newCoordinator(t, seedItems(), fake)

	order, err := c.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-077", order.Number)
	assert.Empty(t, store.Items(), "successful checkout clears the local cart")
	assert.Equal(t, []string{"add", "add", "checkout"}, fake.Calls())
}

func TestCheckout_RemoteFailureKeepsLocalCart(t *testing.T) {
	fake := &testutil.FakeGateway{Fail: map[string]error{"checkout": validationErr()}}
	c, store := newCoordinator(t, seedItems(), fake)

	_, err := c.Checkout(context.Background())
	require.Error(t, err)
	assert.Len(t, store.Items(), 2, "failed checkout must not clear the cart")
}

func TestOverlappingConfirmations_LaterMutationSurvives(t *testing.T) {
	release := make(chan struct{})
	fake := &testutil.FakeGateway{Blocking: release}
	c, store := newCoordinator(t, seedItems(), fake)
	ctx := context.Background()

	res := c.RemoveItem(ctx, 5)
	require.True(t, res.Success, "caller is not blocked by the in-flight confirmation")

	res = c.UpdateQuantity(ctx, 9, 2)
	require.True(t, res.Success, "a new mutation may be issued while the previous one is still confirming")

	close(release)
	c.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].ID)
	assert.Equal(t, 2, items[0].Quantity, "the later mutation survives the overlap")
	assert.NoError(t, c.LastSyncError())
	assert.Equal(t, 1, fake.CallCount("remove"))
	assert.Equal(t, 1, fake.CallCount("set"))
}

func TestConfirmationSurvivesCallerCancellation(t *testing.T) {
	fake := &testutil.FakeGateway{}
	c, _ := newCoordinator(t, seedItems(), fake)

	ctx, cancel := context.WithCancel(context.Background())
	res := c.RemoveItem(ctx, 5)
	cancel()
	require.True(t, res.Success)
	c.Wait()

	assert.Equal(t, 1, fake.CallCount("remove"), "confirmation runs despite cancelled caller context")
}
