package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSlotEmptyRead(t *testing.T) {
	slot := NewFileSlot(t.TempDir(), "master.json")
	_, err := slot.Read(context.Background())
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlotWriteRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	slot := NewFileSlot(dir, "master.json")

	require.NoError(t, slot.Write(ctx, []byte(`{"version":3}`)))
	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":3}`), data)

	// 写入不留临时文件
	_, err = os.Stat(filepath.Join(dir, "master.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileSlotCreatesMissingDir(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	slot := NewFileSlot(dir, "master.json")

	require.NoError(t, slot.Write(ctx, []byte("x")))
	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestFileSlotEmptyFileTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "master.json"), nil, 0600))

	slot := NewFileSlot(dir, "master.json")
	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestFileSlotClear(t *testing.T) {
	ctx := context.Background()
	slot := NewFileSlot(t.TempDir(), "master.json")

	require.NoError(t, slot.Write(ctx, []byte("data")))
	require.NoError(t, slot.Clear(ctx))
	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	// 清空不存在的槽不算错误
	assert.NoError(t, slot.Clear(ctx))
}
