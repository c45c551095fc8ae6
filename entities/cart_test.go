package entities

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name string, price int64) Product {
	return Product{Id: uuid.New(), Name: name, Price: decimal.NewFromInt(price), Image: "https://img/" + name}
}

func TestCartExampleFlow(t *testing.T) {
	a := product("gloves", 100)
	b := product("wraps", 50)
	var cart Cart

	cart.Add(a, 1)
	cart.Add(a, 1)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(cart.Total()))

	cart.Add(b, 3)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, b.Id, cart.Items[1].ProductId)
	assert.True(t, decimal.NewFromInt(350).Equal(cart.Total()))
	assert.Equal(t, 5, cart.ItemCount())
}

func TestCartMergeInvariant(t *testing.T) {
	prods := []Product{product("a", 10), product("b", 20), product("c", 30), product("d", 1)}
	want := map[uuid.UUID]int{}
	var cart Cart
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		p := prods[rnd.Intn(len(prods))]
		q := rnd.Intn(5) + 1
		cart.Add(p, q)
		want[p.Id] += q
	}

	seen := map[uuid.UUID]bool{}
	for _, li := range cart.Items {
		assert.False(t, seen[li.ProductId], "duplicate line for %s", li.ProductId)
		seen[li.ProductId] = true
		assert.Equal(t, want[li.ProductId], li.Quantity)
	}
	assert.Len(t, cart.Items, len(want))
}

func TestCartTotal(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		var cart Cart
		assert.True(t, decimal.Zero.Equal(cart.Total()))
		assert.True(t, cart.IsEmpty())
	})

	t.Run("no float drift", func(t *testing.T) {
		var cart Cart
		p := Product{Id: uuid.New(), Name: "tape", Price: decimal.RequireFromString("0.10")}
		for i := 0; i < 1000; i++ {
			cart.Add(p, 1)
		}
		q := Product{Id: uuid.New(), Name: "chalk", Price: decimal.RequireFromString("0.20")}
		cart.Add(q, 3)
		assert.Equal(t, "100.6", cart.Total().String())
	})

	t.Run("uses the snapshot price", func(t *testing.T) {
		var cart Cart
		p := product("belt", 75)
		cart.Add(p, 2)
		p.Price = decimal.NewFromInt(999)
		cart.Add(p, 1)
		assert.True(t, decimal.NewFromInt(225).Equal(cart.Total()))
	})
}

func TestCartRemove(t *testing.T) {
	a := product("shin guards", 300)
	b := product("mouthguard", 40)
	var cart Cart
	cart.Add(a, 1)
	cart.Add(b, 2)

	assert.True(t, cart.Remove(a.Id))
	assert.False(t, cart.Remove(a.Id))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.Id, cart.Items[0].ProductId)

	assert.False(t, cart.Remove(uuid.New()))
	assert.Len(t, cart.Items, 1)
}

func TestCartSetQuantity(t *testing.T) {
	a := product("bag", 1000)
	var cart Cart
	cart.Add(a, 1)

	assert.True(t, cart.SetQuantity(a.Id, 4))
	assert.Equal(t, 4, cart.Items[0].Quantity)

	assert.False(t, cart.SetQuantity(uuid.New(), 2))

	assert.True(t, cart.SetQuantity(a.Id, 0))
	assert.True(t, cart.IsEmpty())
}

func TestCartResponseNeverNilItems(t *testing.T) {
	var cart Cart
	resp := cart.Response()
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 0, resp.ItemCount)
}

func TestCartQuantityCap(t *testing.T) {
	a := product("gloves", 100)
	b := product("wraps", 50)
	var cart Cart

	require.True(t, cart.Add(b, 3))
	require.True(t, cart.Add(a, MaxLineQuantity-1))
	assert.True(t, cart.Add(a, 1))
	assert.False(t, cart.Add(a, 1))
	assert.False(t, cart.Add(a, MaxLineQuantity))
	assert.False(t, cart.Add(product("bag", 1), MaxLineQuantity+1))

	require.Len(t, cart.Items, 2)
	assert.Equal(t, MaxLineQuantity, cart.Items[1].Quantity)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	assert.False(t, cart.SetQuantity(b.Id, MaxLineQuantity+1))
	assert.Equal(t, 3, cart.Items[0].Quantity)
}
