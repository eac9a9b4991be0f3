// Package redis keeps the logout revocation list in Redis so it is shared
// by every server process.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Denylist struct {
	client *redis.Client
	prefix string
}

// NewDenylist connects to redisURL and verifies the connection.
func NewDenylist(redisURL string) (*Denylist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewDenylistWithClient(client), nil
}

func NewDenylistWithClient(client *redis.Client) *Denylist {
	return &Denylist{client: client, prefix: "revoked:"}
}

func (d *Denylist) key(tokenID string) string {
	return d.prefix + tokenID
}

// Revoke stores tokenID until expiresAt. Tokens that already expired are
// not recorded.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) Close() error {
	return d.client.Close()
}
