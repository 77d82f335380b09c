package services

import (
	"fmt"
	"time"
)

// Cache is the view-cache collaborator. Writes invalidate the affected
// keys; reads and TTL policy stay in the HTTP layer.
type Cache interface {
	GetBytes(key string) ([]byte, bool)
	SetJSON(key string, v interface{}, ttl time.Duration)
	InvalidateByPrefix(prefix string)
}

type noopCache struct{}

func (noopCache) GetBytes(string) ([]byte, bool)             { return nil, false }
func (noopCache) SetJSON(string, interface{}, time.Duration) {}
func (noopCache) InvalidateByPrefix(string)                  {}

// BoardListKey identifies one cached page of a category listing.
func BoardListKey(category string, page, pageSize int) string {
	return fmt.Sprintf("%s:page=%d:size=%d", BoardListPrefix(category), page, pageSize)
}

// BoardListPrefix covers every cached page of a category listing.
func BoardListPrefix(category string) string {
	return "cache:board:list:" + category
}

// BoardDetailKey identifies the cached detail view of one post.
func BoardDetailKey(category string, id uint) string {
	return fmt.Sprintf("cache:board:detail:%s:%d", category, id)
}
