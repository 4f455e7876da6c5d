package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline-http-service/internal/domain/models"
)

func newTestLookup(t *testing.T) *LookupService {
	t.Helper()
	ctx := context.Background()
	master, _ := newTestMaster(t)
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{
		ID: "S001", Name: "山田太郎", QR: "STF|S001|山田太郎",
	}))
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{
		ID: "S002", Name: "佐藤花子",
	}))
	return NewLookupService(master)
}

func TestNormalizeText(t *testing.T) {
	// 全角英数・记号转半角，全角空格转半角，CRLF转LF
	assert.Equal(t, "ID:S001", NormalizeText("ＩＤ：Ｓ００１"))
	assert.Equal(t, "A-00123", NormalizeText("Ａ－００１２３"))
	assert.Equal(t, "a|b", NormalizeText("ａ｜ｂ"))
	assert.Equal(t, "1 2", NormalizeText(" 1　2 "))
	assert.Equal(t, "a\nb", NormalizeText("a\r\nb"))
	assert.Equal(t, "", NormalizeText(""))
}

func TestExtractIdentifier(t *testing.T) {
	lookup := newTestLookup(t)

	// JSON载荷
	assert.Equal(t, "S001", lookup.ExtractIdentifier(`{"id":"S001"}`))
	assert.Equal(t, "S001", lookup.ExtractIdentifier(`{"staff_id": "S001", "name": "山田"}`))
	assert.Equal(t, "S001", lookup.ExtractIdentifier(`{"staffId":"S001"}`))

	// 竖线分隔legacy载荷，前导类别标签被跳过
	assert.Equal(t, "S001", lookup.ExtractIdentifier("V1|S001|山田太郎"))
	assert.Equal(t, "北定盤1", lookup.ExtractIdentifier("LOC|北定盤1"))

	// 标签字段形式，全角输入也能命中
	assert.Equal(t, "S001", lookup.ExtractIdentifier("職員ID: S001 至急"))
	assert.Equal(t, "S001", lookup.ExtractIdentifier("職員ＩＤ：Ｓ００１"))

	// 裸token形式
	assert.Equal(t, "A-00123", lookup.ExtractIdentifier("確認 A-00123 まで"))

	// 抽取不到时返回空串
	assert.Equal(t, "", lookup.ExtractIdentifier("該当なし"))
	assert.Equal(t, "", lookup.ExtractIdentifier(""))
}

func TestResolveStaff(t *testing.T) {
	lookup := newTestLookup(t)

	// 登录码精确一致
	rec, err := lookup.ResolveStaff("STF|S001|山田太郎")
	require.NoError(t, err)
	assert.Equal(t, "S001", rec.ID)

	// 职员ID忽略大小写
	rec, err = lookup.ResolveStaff("s001")
	require.NoError(t, err)
	assert.Equal(t, "S001", rec.ID)

	// 姓名精确一致
	rec, err = lookup.ResolveStaff("佐藤花子")
	require.NoError(t, err)
	assert.Equal(t, "S002", rec.ID)

	_, err = lookup.ResolveStaff("存在しない")
	assert.ErrorIs(t, err, ErrStaffNotFound)
	_, err = lookup.ResolveStaff("  ")
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestResolveStaffIDBeatsName(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)
	// 一个职员的姓名恰好等于另一个职员的ID
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "S002"}))
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S002", Name: "佐藤花子"}))
	lookup := NewLookupService(master)

	// ID一致优先于姓名一致
	rec, err := lookup.ResolveStaff("S002")
	require.NoError(t, err)
	assert.Equal(t, "S002", rec.ID)
}

func TestResolveLocation(t *testing.T) {
	lookup := newTestLookup(t)

	// 登录码精确一致
	loc, err := lookup.ResolveLocation("LOC|北定盤1")
	require.NoError(t, err)
	assert.Equal(t, "loc_kita_joban_1", loc.ID)

	// 名称精确一致
	loc, err = lookup.ResolveLocation("南定盤")
	require.NoError(t, err)
	assert.Equal(t, "loc_minami_joban", loc.ID)

	// 双向包含: token是名称的一部分，取数组顺序靠前者
	loc, err = lookup.ResolveLocation("北定盤")
	require.NoError(t, err)
	assert.Equal(t, "loc_kita_joban_1", loc.ID)

	// 双向包含: 名称是token的一部分
	loc, err = lookup.ResolveLocation("第一工場の入口付近")
	require.NoError(t, err)
	assert.Equal(t, "loc_daiichi_kojo", loc.ID)

	_, err = lookup.ResolveLocation("どこでもない")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestExtractThenResolveScenario(t *testing.T) {
	lookup := newTestLookup(t)

	// 事发现场粘贴的自由文本
	token := lookup.ExtractIdentifier("発生場所 北定盤2 職員ID:S001 至急")
	assert.Equal(t, "S001", token)

	rec, err := lookup.ResolveStaff(token)
	require.NoError(t, err)
	assert.Equal(t, "山田太郎", rec.Name)
}
