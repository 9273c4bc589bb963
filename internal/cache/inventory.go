package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	RandomPickKeyPrefix = "random:%s"
)

const (
	// RandomPickTTL is the default lifetime of a cached random pick.
	RandomPickTTL = 12 * time.Hour
)

// RandomPickKey is the cache key of the random pick of a category.
func RandomPickKey(category string) string {
	return fmt.Sprintf(RandomPickKeyPrefix, category)
}

// Invalidate removes key from the package client, if any.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateRandomPick drops the cached random pick of a category.
func InvalidateRandomPick(ctx context.Context, category string) {
	Invalidate(ctx, RandomPickKey(category))
}
