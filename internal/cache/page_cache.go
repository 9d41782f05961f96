// Package cache 保存整页渲染结果，按固定时长过期，不感知数据变化。
package cache

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry 是一次完整响应的快照
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

type PageCache struct {
	lru *expirable.LRU[string, Entry]
	ttl time.Duration
}

// New 创建最多保存 size 个页面、每个页面存活 ttl 的缓存
func New(size int, ttl time.Duration) *PageCache {
	if size <= 0 {
		size = 1
	}
	return &PageCache{
		lru: expirable.NewLRU[string, Entry](size, nil, ttl),
		ttl: ttl,
	}
}

// Key 页面缓存键：路径 + 页码 + 访问者（匿名为 0），其余查询参数不参与
func Key(path string, page, viewerID int) string {
	return fmt.Sprintf("%s|page=%d|viewer=%d", path, page, viewerID)
}

func (c *PageCache) Get(key string) (Entry, bool) {
	return c.lru.Get(key)
}

func (c *PageCache) Set(key string, e Entry) {
	c.lru.Add(key, e)
}

// Purge 立即清空全部页面
func (c *PageCache) Purge() {
	c.lru.Purge()
}

func (c *PageCache) Len() int {
	return c.lru.Len()
}

func (c *PageCache) TTL() time.Duration {
	return c.ttl
}
