package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/infrastructure/config"
	"lifeline-http-service/internal/infrastructure/storage"
)

// 限流器按客户端IP聚合且跨测试存活，给每个测试路由分配独立IP避免互相挤占配额
var (
	testClientSeq  int
	testClientAddr string
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testClientSeq++
	testClientAddr = fmt.Sprintf("198.51.100.%d:4321", testClientSeq)

	cfg := &config.Config{
		EnvType:           "TEST",
		ServerPort:        "0",
		StorageBackend:    "file",
		DataDir:           t.TempDir(),
		EncryptionEnabled: true,
		JWTSecretKey:      "test-secret",
		MinPasswordLength: 12,
		MaxLoginAttempts:  3,
		LockoutSeconds:    60,
		AutoLockSeconds:   90,
	}

	keySlot := storage.NewFileSlot(cfg.DataDir, "seal.key")
	docSlot := storage.NewFileSlot(cfg.DataDir, "master-document.json")
	c := container.NewServiceContainer(cfg, nil, keySlot, docSlot)

	ctx := context.Background()
	seal := c.GetService("seal").(services.InterfaceSealService)
	require.NoError(t, seal.EnsureKey(ctx))
	master := c.GetService("master").(services.InterfaceMasterService)
	require.NoError(t, master.Load(ctx))

	return SetupRouter(c, cfg)
}

type apiResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = testClientAddr
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w, resp := doJSON(t, r, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", resp.Data["message"])
}

func TestGateSetupAndLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	// 初始状态: 未设置密码
	w, resp := doJSON(t, r, http.MethodGet, "/api/gate/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["password_set"])

	// 太短的密码被拒绝
	w, _ = doJSON(t, r, http.MethodPost, "/api/gate/setup", "", gin.H{
		"password": "短い", "confirm": "短い",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 正常设置
	w, _ = doJSON(t, r, http.MethodPost, "/api/gate/setup", "", gin.H{
		"password": "anzen-daiichi-2026", "confirm": "anzen-daiichi-2026",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 密码错误
	w, resp = doJSON(t, r, http.MethodPost, "/api/gate/login", "", gin.H{
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 2, resp.Data["remaining_attempts"])

	// 登录成功拿到令牌
	w, resp = doJSON(t, r, http.MethodPost, "/api/gate/login", "", gin.H{
		"password": "anzen-daiichi-2026",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)

	// 有令牌才能进管理接口
	w, _ = doJSON(t, r, http.MethodGet, "/api/staffs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/staffs", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func adminToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/api/gate/setup", "", gin.H{
		"password": "anzen-daiichi-2026", "confirm": "anzen-daiichi-2026",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp := doJSON(t, r, http.MethodPost, "/api/gate/login", "", gin.H{
		"password": "anzen-daiichi-2026",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestStaffCRUDAndLookup(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	// 登记职员
	w, _ := doJSON(t, r, http.MethodPost, "/api/staffs", token, gin.H{
		"id": "S001", "name": "山田太郎", "blood": "A",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 重复ID被拒绝
	w, _ = doJSON(t, r, http.MethodPost, "/api/staffs", token, gin.H{
		"id": "S001", "name": "別人",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 公开查找接口无需令牌
	w, resp := doJSON(t, r, http.MethodPost, "/api/lookup/staff", "", gin.H{
		"text": "職員ID:S001 至急",
	})
	require.Equal(t, http.StatusOK, w.Code)
	staff, _ := resp.Data["staff"].(map[string]interface{})
	require.NotNil(t, staff)
	assert.Equal(t, "山田太郎", staff["name"])

	// 未登记的标识返回404
	w, _ = doJSON(t, r, http.MethodPost, "/api/lookup/staff", "", gin.H{
		"text": "S999",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	// 新建会话（无需令牌）
	w, resp := doJSON(t, r, http.MethodPost, "/api/reports", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := resp.Data["id"].(string)
	require.NotEmpty(t, id)

	// 容态未确认时不能进场所步骤
	w, _ = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/location", "", gin.H{
		"location_id": "loc_soko",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 意识・呼吸双无 → 紧急引导序列启动
	w, resp = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/triage", "", gin.H{
		"conscious": "no", "breathing": "no",
	})
	require.Equal(t, http.StatusOK, w.Code)
	emergency, _ := resp.Data["emergency"].(map[string]interface{})
	require.NotNil(t, emergency)
	assert.Equal(t, true, emergency["triggered"])

	// 走完剩余步骤到预览
	w, _ = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/location", "", gin.H{
		"location_id": "loc_kita_joban_2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/accident", "", gin.H{
		"situation_id": "sit_fall", "body_part_ids": []string{"bp_head"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/victim", "", gin.H{
		"unknown": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/reports/"+id+"/review", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/api/reports/"+id+"/preview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	preview, _ := resp.Data["preview"].(map[string]interface{})
	require.NotNil(t, preview)
	assert.Contains(t, preview["subject"], "北定盤2")
	assert.Contains(t, resp.Data["mail_uri"], "mailto:")
	assert.Equal(t, "tel:119", resp.Data["tel_uri"])

	// 发出后会话封板
	w, _ = doJSON(t, r, http.MethodPost, "/api/reports/"+id+"/sent", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPut, "/api/reports/"+id+"/victim", "", gin.H{
		"unknown": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotExportImport(t *testing.T) {
	r := newTestRouter(t)
	token := adminToken(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/staffs", token, gin.H{
		"id": "S001", "name": "山田太郎",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 导出
	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.RemoteAddr = testClientAddr
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "山田太郎")

	// 无效导入被拒绝且不破坏现有数据
	req = httptest.NewRequest(http.MethodPut, "/api/snapshot", bytes.NewBufferString(`{"locations":[]}`))
	req.RemoteAddr = testClientAddr
	req.Header.Set("Authorization", "Bearer "+token)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	assert.Equal(t, http.StatusBadRequest, w3.Code)

	w4, resp := doJSON(t, r, http.MethodGet, "/api/staffs/S001", token, nil)
	require.Equal(t, http.StatusOK, w4.Code)
	assert.Equal(t, "山田太郎", resp.Data["name"])
}
