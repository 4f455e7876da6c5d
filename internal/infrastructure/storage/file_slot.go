package storage

import (
	"context"
	"os"
	"path/filepath"
)

// FileSlot 以单个文件承载一个存储槽，供无Redis的单机部署使用
type FileSlot struct {
	Path string
}

// NewFileSlot 创建绑定到指定文件的存储槽
func NewFileSlot(dir, name string) *FileSlot {
	return &FileSlot{
		Path: filepath.Join(dir, name),
	}
}

// Read 读取整个文件内容
func (s *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

// Write 先写临时文件再改名，避免写一半留下损坏数据
func (s *FileSlot) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Clear 删除文件
func (s *FileSlot) Clear(_ context.Context) error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
