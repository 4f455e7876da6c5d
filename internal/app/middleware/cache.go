package middleware

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

const cacheKeyPrefix = "lifeline:cache:"

// redisCache Redis后端；为nil时退回进程内缓存（文件存储部署时没有Redis）
var redisCache *redis.Client

// InitCacheMiddleware 初始化响应缓存中间件
func InitCacheMiddleware(client *redis.Client) {
	redisCache = client
}

// 进程内缓存条目
type cacheEntry struct {
	Content    []byte
	Expiration time.Time
}

var localCache = struct {
	sync.RWMutex
	items map[string]cacheEntry
}{items: make(map[string]cacheEntry)}

// cacheKey 路径+排序后的查询参数做MD5
func cacheKey(c *gin.Context) string {
	path := c.Request.URL.Path

	queryParams := c.Request.URL.Query()
	var queryKeys []string
	for key := range queryParams {
		queryKeys = append(queryKeys, key)
	}
	sort.Strings(queryKeys)

	var queryString string
	for _, key := range queryKeys {
		values := queryParams[key]
		sort.Strings(values)
		for _, value := range values {
			queryString += key + "=" + value + "&"
		}
	}

	hasher := md5.New()
	hasher.Write([]byte(path + "?" + queryString))
	return cacheKeyPrefix + hex.EncodeToString(hasher.Sum(nil))
}

func cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if redisCache != nil {
		content, err := redisCache.Get(ctx, key).Bytes()
		if err != nil {
			return nil, false
		}
		return content, true
	}

	localCache.RLock()
	entry, found := localCache.items[key]
	localCache.RUnlock()
	if !found || entry.Expiration.Before(time.Now()) {
		return nil, false
	}
	return entry.Content, true
}

func cacheSet(ctx context.Context, key string, content []byte, expiration time.Duration) {
	if redisCache != nil {
		redisCache.Set(ctx, key, content, expiration)
		return
	}

	localCache.Lock()
	localCache.items[key] = cacheEntry{
		Content:    content,
		Expiration: time.Now().Add(expiration),
	}
	localCache.Unlock()
}

// PurgeCache 清除全部响应缓存。主数据变更后调用，避免公开接口吐旧数据。
func PurgeCache() {
	if redisCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		keys, err := redisCache.Keys(ctx, cacheKeyPrefix+"*").Result()
		if err == nil && len(keys) > 0 {
			redisCache.Del(ctx, keys...)
		}
		return
	}

	localCache.Lock()
	localCache.items = make(map[string]cacheEntry)
	localCache.Unlock()
}

// Cache 只缓存GET的成功响应
func Cache(expiration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		if content, found := cacheGet(c.Request.Context(), key); found {
			c.Data(http.StatusOK, "application/json; charset=utf-8", content)
			c.Abort()
			return
		}

		// 缓存未命中，捕获响应
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			cacheSet(c.Request.Context(), key, writer.body.Bytes(), expiration)
		}
	}
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// 定期清理过期的进程内缓存
func init() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()
			localCache.Lock()
			for key, entry := range localCache.items {
				if entry.Expiration.Before(now) {
					delete(localCache.items, key)
				}
			}
			localCache.Unlock()
		}
	}()
}
