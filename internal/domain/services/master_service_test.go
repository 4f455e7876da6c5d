package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline-http-service/internal/domain/models"
)

func newTestMaster(t *testing.T) (*MasterService, *memSlot) {
	t.Helper()
	slot := &memSlot{}
	master := NewMasterService(slot, nil, NewZoneService())
	require.NoError(t, master.Load(context.Background()))
	return master, slot
}

func TestLoadFallsBackToDefaultsWhenEmpty(t *testing.T) {
	master, _ := newTestMaster(t)

	doc := master.Snapshot()
	assert.Empty(t, doc.Staff)
	assert.Len(t, doc.Locations, 6)
	assert.Len(t, doc.Situations, 4)
	assert.Len(t, doc.BodyParts, 7)
}

func TestLoadFallsBackToDefaultsOnCorruptData(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}
	require.NoError(t, slot.Write(ctx, []byte("{broken json")))

	master := NewMasterService(slot, nil, NewZoneService())
	require.NoError(t, master.Load(ctx))
	assert.Len(t, master.Snapshot().Locations, 6)
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	master, slot := newTestMaster(t)

	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎", Blood: "A"}))

	// 第二个实例从同一槽重新加载
	master2 := NewMasterService(slot, nil, NewZoneService())
	require.NoError(t, master2.Load(ctx))
	doc := master2.Snapshot()
	idx := doc.FindStaff("S001")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "山田太郎", doc.Staff[idx].Name)
}

func TestSealedPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	keySlot := &memSlot{}
	docSlot := &memSlot{}

	seal := NewSealService(keySlot)
	require.NoError(t, seal.EnsureKey(ctx))

	master := NewMasterService(docSlot, seal, NewZoneService())
	require.NoError(t, master.Load(ctx))
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎"}))

	// 槽里存的是信封，不是明文JSON
	raw, err := docSlot.Read(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "山田太郎")

	master2 := NewMasterService(docSlot, seal, NewZoneService())
	require.NoError(t, master2.Load(ctx))
	assert.GreaterOrEqual(t, master2.Snapshot().FindStaff("S001"), 0)
}

func TestMergeDocumentsSavedWinsAndUnion(t *testing.T) {
	defaults := models.DefaultMasterDocument()
	saved := &models.MasterDocument{
		Locations: []models.Location{
			// 同ID: 保存数据胜出
			{ID: "loc_kita_joban_1", Name: "北定盤1（改名）"},
			// 保存独有: 追加
			{ID: "loc_custom", Name: "第二工場"},
		},
	}

	merged := MergeDocuments(defaults, saved)
	idx := merged.FindLocation("loc_kita_joban_1")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "北定盤1（改名）", merged.Locations[idx].Name)
	assert.GreaterOrEqual(t, merged.FindLocation("loc_custom"), 0)
	// 默认独有的条目保留
	assert.GreaterOrEqual(t, merged.FindLocation("loc_soko"), 0)
	assert.Len(t, merged.Locations, 7)

	// 合并是幂等的
	again := MergeDocuments(defaults, merged)
	assert.Equal(t, len(merged.Locations), len(again.Locations))
}

func TestMergeDocumentsKeepsCredentials(t *testing.T) {
	defaults := models.DefaultMasterDocument()
	saved := &models.MasterDocument{
		Credentials: models.Credentials{AdminPassHash: "abc123"},
	}
	merged := MergeDocuments(defaults, saved)
	assert.Equal(t, "abc123", merged.Credentials.AdminPassHash)
}

func TestCreateStaffRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)

	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎"}))
	err := master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "別人"})
	assert.ErrorIs(t, err, ErrStaffAlreadyExist)

	// 文档未被改动
	count := 0
	for _, rec := range master.Snapshot().Staff {
		if rec.ID == "S001" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeleteCompanyDetachesStaff(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)

	require.NoError(t, master.CreateCompany(ctx, models.Company{ID: "c1", Name: "協力会社A"}))
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎", CompanyID: "c1"}))

	require.NoError(t, master.DeleteCompany(ctx, "c1"))

	doc := master.Snapshot()
	assert.Equal(t, -1, doc.FindCompany("c1"))
	idx := doc.FindStaff("S001")
	require.GreaterOrEqual(t, idx, 0)
	// 职员档案保留，仅解除会社关联
	assert.Empty(t, doc.Staff[idx].CompanyID)
}

func TestLocationZoneAssignment(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)

	// (820,90)落在事務所多边形内
	require.NoError(t, master.CreateLocation(ctx, models.Location{
		ID: "loc_test", Name: "テスト場所", Point: &models.Point{X: 820, Y: 90},
	}))
	doc := master.Snapshot()
	idx := doc.FindLocation("loc_test")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "zone_office", doc.Locations[idx].ZoneID)

	// 北定盤2按名称修正表钉死在北エリア
	idx = doc.FindLocation("loc_kita_joban_2")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "zone_north", doc.Locations[idx].ZoneID)
}

func TestImportSnapshotRejectsInvalidShape(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎"}))

	// 不是JSON
	assert.ErrorIs(t, master.ImportSnapshot(ctx, []byte("not json")), ErrInvalidSnapshot)
	// 缺少staff键
	assert.ErrorIs(t, master.ImportSnapshot(ctx, []byte(`{"locations":[]}`)), ErrInvalidSnapshot)
	// staff不是数组
	assert.ErrorIs(t, master.ImportSnapshot(ctx, []byte(`{"staff":"oops"}`)), ErrInvalidSnapshot)

	// 校验失败时当前文档不受影响
	assert.GreaterOrEqual(t, master.Snapshot().FindStaff("S001"), 0)
}

func TestImportSnapshotReplacesDocument(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)
	require.NoError(t, master.CreateStaff(ctx, models.StaffRecord{ID: "S001", Name: "山田太郎"}))

	blob, err := master.ExportSnapshot()
	require.NoError(t, err)

	other, _ := newTestMaster(t)
	require.NoError(t, other.ImportSnapshot(ctx, blob))
	assert.GreaterOrEqual(t, other.Snapshot().FindStaff("S001"), 0)
}

func TestUpsertAndDeleteBodyPart(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)

	require.NoError(t, master.UpsertBodyPart(ctx, models.BodyPart{ID: "bp_waist", Label: "腰部"}))
	doc := master.Snapshot()
	assert.GreaterOrEqual(t, doc.FindBodyPart("bp_waist"), 0)
	assert.Len(t, doc.BodyParts, 8)

	// 同ID整体替换
	require.NoError(t, master.UpsertBodyPart(ctx, models.BodyPart{ID: "bp_waist", Label: "腰・背中"}))
	doc = master.Snapshot()
	idx := doc.FindBodyPart("bp_waist")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "腰・背中", doc.BodyParts[idx].Label)
	assert.Len(t, doc.BodyParts, 8)

	require.NoError(t, master.DeleteBodyPart(ctx, "bp_waist"))
	assert.Equal(t, -1, master.Snapshot().FindBodyPart("bp_waist"))

	assert.ErrorIs(t, master.DeleteBodyPart(ctx, "bp_nashi"), ErrBodyPartNotFound)
}

func TestSetContactGroupEnabled(t *testing.T) {
	ctx := context.Background()
	master, _ := newTestMaster(t)

	require.NoError(t, master.SetContactGroupEnabled(ctx, "grp_infirmary", true))
	doc := master.Snapshot()
	idx := doc.FindContactGroup("grp_infirmary")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, doc.ContactGroups[idx].Enabled)

	assert.ErrorIs(t, master.SetContactGroupEnabled(ctx, "grp_nashi", true), ErrGroupNotFound)
}
