package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"combatStore/entities"
	"combatStore/models"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type CartRepository interface {
	SetCart(ctx context.Context, cartKey string, cart entities.Cart) (err error)
	GetCart(ctx context.Context, cartKey string) (res entities.Cart, err error)
	DeleteCart(ctx context.Context, cartKey string) (err error)
}

type CartRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(redis_conn *redis.Client, ttl time.Duration) (CartRepository, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	return &CartRepo{
		rdb: redis_conn,
		ttl: ttl,
	}, nil
}

// SetCart stores the line items as a JSON array; an empty cart removes the key.
func (c *CartRepo) SetCart(ctx context.Context, cartKey string, cart entities.Cart) (err error) {
	if cart.IsEmpty() {
		return c.DeleteCart(ctx, cartKey)
	}
	jsonData, err := json.Marshal(cart.Items)
	if err != nil {
		log.WithError(err).Error("SetCart: marshal")
		err = models.NewStoreError("SetCart", err)
		return
	}
	err = c.rdb.Set(ctx, cartKey, jsonData, c.ttl).Err()
	if err != nil {
		log.WithError(err).Error("SetCart")
		err = models.NewStoreError("SetCart", err)
	}
	return
}

// GetCart never fails on content: a missing or unreadable value is an empty cart.
func (c *CartRepo) GetCart(ctx context.Context, cartKey string) (res entities.Cart, err error) {
	val, e := c.rdb.Get(ctx, cartKey).Bytes()
	if e != nil {
		if errors.Is(e, redis.Nil) {
			return
		}
		log.WithError(e).Error("GetCart")
		err = models.NewStoreError("GetCart", e)
		return
	}
	var items []entities.CartLineItem
	if e := json.Unmarshal(val, &items); e != nil {
		log.WithError(e).WithField("key", cartKey).Warn("GetCart: discarding malformed cart")
		return
	}
	for _, li := range items {
		if li.Quantity <= 0 || li.Quantity > entities.MaxLineQuantity {
			log.WithField("key", cartKey).Warn("GetCart: discarding cart with invalid quantity")
			return
		}
	}
	res.Items = items
	return
}

func (c *CartRepo) DeleteCart(ctx context.Context, cartKey string) (err error) {
	err = c.rdb.Del(ctx, cartKey).Err()
	if err != nil {
		log.WithError(err).Error("DeleteCart")
		err = models.NewStoreError("DeleteCart", err)
	}
	return
}
