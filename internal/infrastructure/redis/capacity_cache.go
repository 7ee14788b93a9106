package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// CapacityCacheInterface は空き枠キャッシュの抽象
type CapacityCacheInterface interface {
	GetAvailableSlots(ctx context.Context, packageID string) (int, error)
	SetAvailableSlots(ctx context.Context, packageID string, slots int, ttl time.Duration) error
	Invalidate(ctx context.Context, packageID string) error
}

// CapacityCache は定員制パッケージの空き枠をキャッシュする。
// 予約作成時の判定には使わず、一覧や見積もりの表示用の読み取りにのみ使う。
type CapacityCache struct {
	client *redis.Client
}

var _ CapacityCacheInterface = (*CapacityCache)(nil)

// NewCapacityCache は新しいCapacityCacheインスタンスを作成する
func NewCapacityCache(client *redis.Client) *CapacityCache {
	return &CapacityCache{client: client}
}

// GetAvailableSlots はパッケージの空き枠をキャッシュから取得する
func (c *CapacityCache) GetAvailableSlots(ctx context.Context, packageID string) (int, error) {
	val, err := c.client.Get(ctx, availableSlotsKey(packageID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableSlots はパッケージの空き枠をキャッシュに保存する
func (c *CapacityCache) SetAvailableSlots(ctx context.Context, packageID string, slots int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableSlotsKey(packageID), slots, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はパッケージのキャッシュを無効化する
func (c *CapacityCache) Invalidate(ctx context.Context, packageID string) error {
	if err := c.client.Del(ctx, availableSlotsKey(packageID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availableSlotsKey(packageID string) string {
	return fmt.Sprintf("packages:available:%s", packageID)
}
