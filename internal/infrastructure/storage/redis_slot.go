package storage

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"lifeline-http-service/internal/infrastructure/config"
)

// RedisSlot 以单个Redis key承载一个存储槽
type RedisSlot struct {
	Client *redis.Client
	Key    string
}

// NewRedisClient 按配置创建Redis客户端
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})
}

// NewRedisSlot 创建绑定到指定key的存储槽
func NewRedisSlot(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{
		Client: client,
		Key:    key,
	}
}

// Read 读取槽中的数据块
func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	val, err := s.Client.Get(ctx, s.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return val, nil
}

// Write 整块写入，无过期时间（持久数据）
func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	return s.Client.Set(ctx, s.Key, data, 0).Err()
}

// Clear 删除槽对应的key
func (s *RedisSlot) Clear(ctx context.Context) error {
	return s.Client.Del(ctx, s.Key).Err()
}
