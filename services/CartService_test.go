package services

import (
	"context"
	"testing"

	"combatStore/entities"
	"combatStore/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(prods ...models.Product_db) (CartService, *fakeCarts, entities.Session) {
	carts := newFakeCarts()
	cs := NewCartService(NewCatalogService(newFakeProducts(prods...)), carts)
	sess := entities.Session{Id: uuid.NewString(), UserId: uuid.New(), Email: "f@gym.test"}
	return cs, carts, sess
}

func TestAddItemMergesLines(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	wraps := product("Wraps", "50", "Boxing")
	cs, carts, sess := newCartFixture(gloves, wraps)
	ctx := context.Background()

	_, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 2})
	require.NoError(t, err)
	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: wraps.Id})
	require.NoError(t, err)
	cart, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.Items[1].Quantity)
	assert.Len(t, carts.carts[sess.CartKey()].Items, 2)

	total, err := cs.GetTotal(ctx, sess)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(350)), total.String())
}

func TestAddItemRejects(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	cs, carts, sess := newCartFixture(gloves)
	ctx := context.Background()

	_, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: -1})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = cs.AddItem(ctx, sess, entities.CartRequest{Quantity: 1})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Empty(t, carts.carts)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	wraps := product("Wraps", "50", "Boxing")
	cs, carts, sess := newCartFixture(gloves, wraps)
	ctx := context.Background()

	_, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 1})
	require.NoError(t, err)
	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: wraps.Id, Quantity: 1})
	require.NoError(t, err)

	cart, err := cs.UpdateQuantity(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart, err = cs.UpdateQuantity(ctx, sess, entities.CartRequest{ProductId: wraps.Id, Quantity: 0})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = cs.RemoveItem(ctx, sess, uuid.New())
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	cart, err = cs.RemoveItem(ctx, sess, gloves.Id)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	_, stored := carts.carts[sess.CartKey()]
	assert.False(t, stored)
}

func TestCartsAreScopedToSession(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	cs, _, sess := newCartFixture(gloves)
	other := entities.Session{Id: uuid.NewString(), UserId: sess.UserId}
	ctx := context.Background()

	_, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 1})
	require.NoError(t, err)

	cart, err := cs.GetCart(ctx, other)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	require.NoError(t, cs.Clear(ctx, sess))
	cart, err = cs.GetCart(ctx, sess)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartLoadFailure(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	cs, carts, sess := newCartFixture(gloves)
	carts.failGet = true

	_, err := cs.AddItem(context.Background(), sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrStore)
}

func TestAddItemQuantityCap(t *testing.T) {
	gloves := product("Gloves", "100", "Boxing")
	wraps := product("Wraps", "50", "Boxing")
	cs, carts, sess := newCartFixture(gloves, wraps)
	ctx := context.Background()

	_, err := cs.AddItem(ctx, sess, entities.CartRequest{ProductId: wraps.Id, Quantity: 3})
	require.NoError(t, err)
	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: entities.MaxLineQuantity})
	require.NoError(t, err)

	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: gloves.Id, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = cs.AddItem(ctx, sess, entities.CartRequest{ProductId: wraps.Id, Quantity: entities.MaxLineQuantity + 1})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = cs.UpdateQuantity(ctx, sess, entities.CartRequest{ProductId: wraps.Id, Quantity: entities.MaxLineQuantity + 1})
	assert.ErrorIs(t, err, models.ErrValidation)

	stored := carts.carts[sess.CartKey()]
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, entities.MaxLineQuantity, stored.Items[1].Quantity)
}
