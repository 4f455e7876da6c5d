package storage

import (
	"context"
	"errors"
)

// ErrSlotEmpty 表示存储槽中没有任何数据
var ErrSlotEmpty = errors.New("存储槽为空")

// Slot 表示一个持久化键值槽，对应原始设计中浏览器localStorage的单个key。
// 主数据文档和加密密钥各占一个槽。
type Slot interface {
	// Read 读取整个数据块；槽为空时返回 ErrSlotEmpty
	Read(ctx context.Context) ([]byte, error)
	// Write 原子性地写入整个数据块
	Write(ctx context.Context, data []byte) error
	// Clear 清空槽
	Clear(ctx context.Context) error
}
