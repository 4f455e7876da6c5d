package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"lifeline-http-service/internal/domain/models"
	"lifeline-http-service/internal/infrastructure/storage"
	Logger "lifeline-http-service/pkg/logger"
)

// 主数据相关的业务错误
var (
	ErrStaffNotFound     = errors.New("职员不存在")
	ErrStaffAlreadyExist = errors.New("相同的职员ID已存在")
	ErrCompanyNotFound   = errors.New("会社不存在")
	ErrLocationNotFound  = errors.New("场所不存在")
	ErrSituationNotFound = errors.New("事故类型不存在")
	ErrBodyPartNotFound  = errors.New("受伤部位不存在")
	ErrGroupNotFound     = errors.New("通知组不存在")
	ErrInvalidSnapshot   = errors.New("导入数据缺少职员名簿，格式无效")
)

// InterfaceMasterService defines the master document service interface
type InterfaceMasterService interface {
	Load(ctx context.Context) error
	Snapshot() *models.MasterDocument

	CreateStaff(ctx context.Context, rec models.StaffRecord) error
	UpdateStaff(ctx context.Context, id string, rec models.StaffRecord) error
	DeleteStaff(ctx context.Context, id string) error

	CreateCompany(ctx context.Context, com models.Company) error
	UpdateCompany(ctx context.Context, id string, com models.Company) error
	DeleteCompany(ctx context.Context, id string) error

	CreateLocation(ctx context.Context, loc models.Location) error
	UpdateLocation(ctx context.Context, id string, loc models.Location) error
	DeleteLocation(ctx context.Context, id string) error

	UpsertSituation(ctx context.Context, sit models.Situation) error
	DeleteSituation(ctx context.Context, id string) error
	UpsertBodyPart(ctx context.Context, part models.BodyPart) error
	DeleteBodyPart(ctx context.Context, id string) error
	SetContactGroupEnabled(ctx context.Context, id string, enabled bool) error

	Credentials() models.Credentials
	SetAdminPassHash(ctx context.Context, hash string) error

	ExportSnapshot() ([]byte, error)
	ImportSnapshot(ctx context.Context, blob []byte) error
}

// MasterService 持有内存中的主数据文档，是唯一的可变共享状态。
// 每次变更都整体重新持久化，不做增量写入。
type MasterService struct {
	docSlot storage.Slot
	seal    InterfaceSealService // nil表示明文持久化
	zone    InterfaceZoneService

	mu  sync.RWMutex
	doc *models.MasterDocument
}

// NewMasterService 创建主数据服务。seal传nil时以明文JSON持久化。
func NewMasterService(docSlot storage.Slot, seal InterfaceSealService, zone InterfaceZoneService) *MasterService {
	return &MasterService{
		docSlot: docSlot,
		seal:    seal,
		zone:    zone,
		doc:     models.DefaultMasterDocument(),
	}
}

// Load 读取持久化的文档并与内置默认合并。
// 槽为空或内容损坏时等同于"不存在"，回落到默认文档，绝不致命。
func (s *MasterService) Load(ctx context.Context) error {
	saved := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := MergeDocuments(models.DefaultMasterDocument(), saved)
	s.assignZonesLocked(merged)
	s.doc = merged
	return nil
}

// readPersisted 读取并解码持久化文档；任何失败都返回nil（按"不存在"处理）
func (s *MasterService) readPersisted(ctx context.Context) *models.MasterDocument {
	raw, err := s.docSlot.Read(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			Logger.Warning("读取主数据失败: %v，使用内置默认", err)
		}
		return nil
	}

	if s.seal != nil {
		var env SealedEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			Logger.Warning("主数据信封损坏: %v，使用内置默认", err)
			return nil
		}
		return s.seal.Decrypt(&env)
	}

	var doc models.MasterDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		Logger.Warning("主数据JSON损坏: %v，使用内置默认", err)
		return nil
	}
	return &doc
}

// save 序列化并整体持久化当前文档。调用方必须已持有写锁。
func (s *MasterService) saveLocked(ctx context.Context) error {
	s.doc.Version = models.CurrentVersion

	var raw []byte
	var err error
	if s.seal != nil {
		var env *SealedEnvelope
		env, err = s.seal.Encrypt(s.doc)
		if err != nil {
			return err
		}
		raw, err = json.Marshal(env)
	} else {
		raw, err = json.Marshal(s.doc)
	}
	if err != nil {
		return err
	}
	return s.docSlot.Write(ctx, raw)
}

// assignZonesLocked 按多边形表为所有带坐标的场所推导区域归属，再套名称修正表
func (s *MasterService) assignZonesLocked(doc *models.MasterDocument) {
	if s.zone == nil {
		return
	}
	overrides := models.ZoneOverrides()
	for i := range doc.Locations {
		loc := &doc.Locations[i]
		if loc.Point != nil {
			loc.ZoneID = s.zone.Classify(*loc.Point)
		}
		if zoneID, ok := overrides[loc.Name]; ok {
			loc.ZoneID = zoneID
		}
	}
}

// Snapshot 返回当前文档的深拷贝，调用方可安全读取
func (s *MasterService) Snapshot() *models.MasterDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDocument(s.doc)
}

// CreateStaff 追加职员。ID重复时拒绝且不改动文档。
func (s *MasterService) CreateStaff(ctx context.Context, rec models.StaffRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.FindStaff(rec.ID) >= 0 {
		return ErrStaffAlreadyExist
	}
	s.doc.Staff = append(s.doc.Staff, rec)
	return s.saveLocked(ctx)
}

// UpdateStaff 整体替换指定职员的档案
func (s *MasterService) UpdateStaff(ctx context.Context, id string, rec models.StaffRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindStaff(id)
	if idx < 0 {
		return ErrStaffNotFound
	}
	// ID变更时同样检查唯一性
	if rec.ID != id && s.doc.FindStaff(rec.ID) >= 0 {
		return ErrStaffAlreadyExist
	}
	s.doc.Staff[idx] = rec
	return s.saveLocked(ctx)
}

// DeleteStaff 立即删除，无软删除，不可恢复
func (s *MasterService) DeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindStaff(id)
	if idx < 0 {
		return ErrStaffNotFound
	}
	s.doc.Staff = append(s.doc.Staff[:idx], s.doc.Staff[idx+1:]...)
	return s.saveLocked(ctx)
}

// CreateCompany 追加会社
func (s *MasterService) CreateCompany(ctx context.Context, com models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.FindCompany(com.ID) >= 0 {
		return errors.New("相同的会社ID已存在")
	}
	s.doc.Companies = append(s.doc.Companies, com)
	return s.saveLocked(ctx)
}

// UpdateCompany 整体替换会社信息
func (s *MasterService) UpdateCompany(ctx context.Context, id string, com models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindCompany(id)
	if idx < 0 {
		return ErrCompanyNotFound
	}
	s.doc.Companies[idx] = com
	return s.saveLocked(ctx)
}

// DeleteCompany 删除会社。引用它的职员档案解除关联（置空），不做级联删除。
func (s *MasterService) DeleteCompany(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindCompany(id)
	if idx < 0 {
		return ErrCompanyNotFound
	}
	s.doc.Companies = append(s.doc.Companies[:idx], s.doc.Companies[idx+1:]...)
	for i := range s.doc.Staff {
		if s.doc.Staff[i].CompanyID == id {
			s.doc.Staff[i].CompanyID = ""
		}
	}
	return s.saveLocked(ctx)
}

// CreateLocation 追加场所并立即推导其区域归属
func (s *MasterService) CreateLocation(ctx context.Context, loc models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.FindLocation(loc.ID) >= 0 {
		return errors.New("相同的场所ID已存在")
	}
	s.applyZoneLocked(&loc)
	s.doc.Locations = append(s.doc.Locations, loc)
	return s.saveLocked(ctx)
}

// UpdateLocation 整体替换场所信息并重新推导区域归属
func (s *MasterService) UpdateLocation(ctx context.Context, id string, loc models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindLocation(id)
	if idx < 0 {
		return ErrLocationNotFound
	}
	s.applyZoneLocked(&loc)
	s.doc.Locations[idx] = loc
	return s.saveLocked(ctx)
}

// DeleteLocation 删除场所
func (s *MasterService) DeleteLocation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindLocation(id)
	if idx < 0 {
		return ErrLocationNotFound
	}
	s.doc.Locations = append(s.doc.Locations[:idx], s.doc.Locations[idx+1:]...)
	return s.saveLocked(ctx)
}

func (s *MasterService) applyZoneLocked(loc *models.Location) {
	if s.zone == nil {
		return
	}
	if loc.Point != nil {
		loc.ZoneID = s.zone.Classify(*loc.Point)
	}
	if zoneID, ok := models.ZoneOverrides()[loc.Name]; ok {
		loc.ZoneID = zoneID
	}
}

// UpsertSituation 新增或整体替换事故类型定义
func (s *MasterService) UpsertSituation(ctx context.Context, sit models.Situation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.doc.FindSituation(sit.ID); idx >= 0 {
		s.doc.Situations[idx] = sit
	} else {
		s.doc.Situations = append(s.doc.Situations, sit)
	}
	return s.saveLocked(ctx)
}

// DeleteSituation 删除事故类型
func (s *MasterService) DeleteSituation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindSituation(id)
	if idx < 0 {
		return ErrSituationNotFound
	}
	s.doc.Situations = append(s.doc.Situations[:idx], s.doc.Situations[idx+1:]...)
	return s.saveLocked(ctx)
}

// UpsertBodyPart 新增或整体替换受伤部位选项
func (s *MasterService) UpsertBodyPart(ctx context.Context, part models.BodyPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.doc.FindBodyPart(part.ID); idx >= 0 {
		s.doc.BodyParts[idx] = part
	} else {
		s.doc.BodyParts = append(s.doc.BodyParts, part)
	}
	return s.saveLocked(ctx)
}

// DeleteBodyPart 删除受伤部位选项
func (s *MasterService) DeleteBodyPart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindBodyPart(id)
	if idx < 0 {
		return ErrBodyPartNotFound
	}
	s.doc.BodyParts = append(s.doc.BodyParts[:idx], s.doc.BodyParts[idx+1:]...)
	return s.saveLocked(ctx)
}

// SetContactGroupEnabled 切换通知组的启用状态
func (s *MasterService) SetContactGroupEnabled(ctx context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.FindContactGroup(id)
	if idx < 0 {
		return ErrGroupNotFound
	}
	s.doc.ContactGroups[idx].Enabled = enabled
	return s.saveLocked(ctx)
}

// Credentials 返回当前凭据（只含指纹，无明文）
func (s *MasterService) Credentials() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Credentials
}

// SetAdminPassHash 写入管理密码指纹并持久化
func (s *MasterService) SetAdminPassHash(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Credentials.AdminPassHash = hash
	return s.saveLocked(ctx)
}

// ExportSnapshot 导出整个文档为可读JSON（明文，供人工备份下载）
func (s *MasterService) ExportSnapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.doc, "", "  ")
}

// ImportSnapshot 校验形状后整体替换文档。
// 顶层必须包含职员名簿（staff键），否则返回格式错误且当前文档不受影响。
func (s *MasterService) ImportSnapshot(ctx context.Context, blob []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(blob, &probe); err != nil {
		return ErrInvalidSnapshot
	}
	rawStaff, ok := probe["staff"]
	if !ok {
		return ErrInvalidSnapshot
	}
	var staff []models.StaffRecord
	if err := json.Unmarshal(rawStaff, &staff); err != nil {
		return ErrInvalidSnapshot
	}

	var doc models.MasterDocument
	if err := json.Unmarshal(blob, &doc); err != nil {
		return ErrInvalidSnapshot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignZonesLocked(&doc)
	s.doc = &doc
	return s.saveLocked(ctx)
}

// MergeDocuments 把持久化文档按集合逐条合并到默认文档之上。
// 合并键为各实体的ID：同ID时保存数据胜出，双方独有的条目都保留（并集）。
// 这样升级内置默认不会抹掉部署方的自定义。合并是幂等的。
func MergeDocuments(defaults, saved *models.MasterDocument) *models.MasterDocument {
	if saved == nil {
		return defaults
	}

	out := cloneDocument(defaults)
	out.Companies = mergeByID(out.Companies, saved.Companies,
		func(c models.Company) string { return c.ID })
	out.Staff = mergeByID(out.Staff, saved.Staff,
		func(r models.StaffRecord) string { return r.ID })
	out.Locations = mergeByID(out.Locations, saved.Locations,
		func(l models.Location) string { return l.ID })
	out.Situations = mergeByID(out.Situations, saved.Situations,
		func(s models.Situation) string { return s.ID })
	out.BodyParts = mergeByID(out.BodyParts, saved.BodyParts,
		func(b models.BodyPart) string { return b.ID })
	out.ContactGroups = mergeByID(out.ContactGroups, saved.ContactGroups,
		func(g models.ContactGroup) string { return g.ID })

	if saved.Credentials.AdminPassHash != "" {
		out.Credentials.AdminPassHash = saved.Credentials.AdminPassHash
	}
	if saved.Credentials.UserPassHash != "" {
		out.Credentials.UserPassHash = saved.Credentials.UserPassHash
	}
	if saved.Credentials.AdminID != "" {
		out.Credentials.AdminID = saved.Credentials.AdminID
	}
	return out
}

// mergeByID 并集合并：默认条目保持原顺序，同ID被保存条目覆盖，
// 保存数据独有的条目按原顺序追加在后。
func mergeByID[T any](defaults, saved []T, key func(T) string) []T {
	out := make([]T, len(defaults))
	copy(out, defaults)

	index := make(map[string]int, len(out))
	for i, item := range out {
		index[key(item)] = i
	}

	for _, item := range saved {
		if i, ok := index[key(item)]; ok {
			out[i] = item
		} else {
			index[key(item)] = len(out)
			out = append(out, item)
		}
	}
	return out
}

// cloneDocument 通过JSON往返做深拷贝
func cloneDocument(doc *models.MasterDocument) *models.MasterDocument {
	raw, err := json.Marshal(doc)
	if err != nil {
		return models.DefaultMasterDocument()
	}
	var out models.MasterDocument
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.DefaultMasterDocument()
	}
	return &out
}
