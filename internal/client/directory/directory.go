// Package directory implements client.AccountDirectory on Redis.
//
// Each account is a hash under "<prefix>:acct:<id>" with email and phone
// fields. Every non-empty email and phone also has a unique index key
// "<prefix>:email:<value>" / "<prefix>:phone:<value>" pointing back to the id,
// which is what IsRegistered checks.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pudo/internal/client/client"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "pudo"

// maxUpsertRetries bounds optimistic-lock retries when a record is changed
// concurrently.
const maxUpsertRetries = 3

type RedisDirectory struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client) *RedisDirectory {
	return &RedisDirectory{rdb: rdb, prefix: defaultPrefix}
}

// Dial connects to the Redis server at addr.
func Dial(addr string) *RedisDirectory {
	return New(redis.NewClient(&redis.Options{Addr: addr}))
}

func (d *RedisDirectory) Close() error {
	return d.rdb.Close()
}

func (d *RedisDirectory) recordKey(id string) string {
	return d.prefix + ":acct:" + id
}

func (d *RedisDirectory) indexKey(field client.Field, value string) string {
	return d.prefix + ":" + string(field) + ":" + normalize(field, value)
}

func normalize(field client.Field, value string) string {
	value = strings.TrimSpace(value)
	if field == client.FieldEmail {
		return strings.ToLower(value)
	}
	return value
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", client.ErrUnavailable, err)
}

func (d *RedisDirectory) IsRegistered(ctx context.Context, field client.Field, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, d.indexKey(field, value)).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

func (d *RedisDirectory) Record(ctx context.Context, id string) (client.DirectoryRecord, error) {
	m, err := d.rdb.HGetAll(ctx, d.recordKey(id)).Result()
	if err != nil {
		return client.DirectoryRecord{}, unavailable(err)
	}
	if len(m) == 0 {
		return client.DirectoryRecord{}, client.ErrNotFound
	}
	return client.DirectoryRecord{Email: m["email"], Phone: m["phone"]}, nil
}

// UpsertRecord replaces the record of id and moves its index entries.
func (d *RedisDirectory) UpsertRecord(ctx context.Context, id string, rec client.DirectoryRecord) error {
	key := d.recordKey(id)

	upsert := func(tx *redis.Tx) error {
		old, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			d.moveIndex(ctx, p, client.FieldEmail, old["email"], rec.Email, id)
			d.moveIndex(ctx, p, client.FieldPhone, old["phone"], rec.Phone, id)
			p.HSet(ctx, key, "email", rec.Email, "phone", rec.Phone)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpsertRetries; i++ {
		err := d.rdb.Watch(ctx, upsert, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return unavailable(err)
		}
		return nil
	}
	return unavailable(redis.TxFailedErr)
}

func (d *RedisDirectory) moveIndex(ctx context.Context, p redis.Pipeliner, field client.Field, oldValue, newValue, id string) {
	if oldValue != "" && normalize(field, oldValue) != normalize(field, newValue) {
		p.Del(ctx, d.indexKey(field, oldValue))
	}
	if newValue != "" {
		p.Set(ctx, d.indexKey(field, newValue), id, 0)
	}
}
