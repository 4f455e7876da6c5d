package services

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifeline-http-service/internal/domain/models"
	Logger "lifeline-http-service/pkg/logger"
)

// 报告流程相关的业务错误
var (
	ErrReportNotFound     = errors.New("报告会话不存在")
	ErrTriageIncomplete   = errors.New("意识与呼吸的确认尚未完成")
	ErrLocationUnresolved = errors.New("发生场所尚未确定（匹配、手动输入或明确选择不明）")
	ErrVictimUnresolved   = errors.New("被灾者尚未确定（名簿匹配或明确选择不明）")
	ErrReportFinalized    = errors.New("报告已发出，不能再修改")
	ErrStepUnknown        = errors.New("未知的引导步骤")
)

// InterfaceWorkflowService defines the guided report workflow service interface
type InterfaceWorkflowService interface {
	CreateSession() *models.ReportSession
	GetSession(id string) (*models.ReportSession, error)
	RestartSession(id string) (*models.ReportSession, error)
	DiscardSession(id string)

	SetTriage(id string, triage models.Triage) (*models.ReportSession, error)
	SetLocation(id string, choice models.LocationChoice) (*models.ReportSession, error)
	SetAccident(id, situationID string, bodyPartIDs []string, note string) (*models.ReportSession, error)
	SetVictim(id string, choice models.VictimChoice) (*models.ReportSession, error)
	SkipToReview(id string) (*models.ReportSession, error)
	ConfirmEmergencyStep(id, step string, done bool) (*models.ReportSession, error)

	BuildPreview(id string) (*models.Preview, error)
	MarkSent(id string) (*models.ReportSession, error)
	MarkCopied(id string) (*models.ReportSession, error)

	SetContinuation(id string, fn func())
	ConsumeContinuation(id string) bool

	BuildMailURI(p *models.Preview) string
	BuildSMSURI(numbers []string, body string) string
	BuildTelURI(number string) string
}

// sessionEntry 包住会话状态和不可序列化的一次性回调
type sessionEntry struct {
	session      *models.ReportSession
	continuation func()
}

// WorkflowService 引导式事故报告的状态机。
// 会话只存在于进程内，显式重开或放弃时丢弃；不跨门禁持久化。
type WorkflowService struct {
	master InterfaceMasterService

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	now func() time.Time
}

// NewWorkflowService 创建报告流程服务
func NewWorkflowService(master InterfaceMasterService) *WorkflowService {
	return &WorkflowService{
		master:   master,
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

// CreateSession 新建一次报告会话
func (s *WorkflowService) CreateSession() *models.ReportSession {
	now := s.now()
	session := &models.ReportSession{
		ID:        uuid.NewString(),
		State:     models.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()
	return cloneSession(session)
}

// GetSession 取会话当前状态
func (s *WorkflowService) GetSession(id string) (*models.ReportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return cloneSession(entry.session), nil
}

// RestartSession 显式重开：丢弃全部进度，回到初始状态。
// 一次性触发标志也随之清零——这是"同一会话只触发一次"的会话边界。
func (s *WorkflowService) RestartSession(id string) (*models.ReportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	now := s.now()
	entry.session = &models.ReportSession{
		ID:        id,
		State:     models.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	entry.continuation = nil
	return cloneSession(entry.session), nil
}

// DiscardSession 放弃会话
func (s *WorkflowService) DiscardSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SetTriage 记录容态确认。
// 意识与呼吸双双为"无"首次成立时，作为副作用启动紧急引导序列；
// 该序列每会话至多触发一次，此后容态来回切换不会重启它。
func (s *WorkflowService) SetTriage(id string, triage models.Triage) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		session.Triage = triage

		if triage.Conscious.IsSet() && triage.Breathing.IsSet() && session.State == models.StateIdle {
			session.State = models.StateTriageEntered
		}

		if triage.Conscious == models.TriNo && triage.Breathing == models.TriNo && !session.Emergency.Triggered {
			session.Emergency.Triggered = true
			session.Emergency.Current = 0
			names := models.EmergencyStepNames()
			session.Emergency.Steps = make([]models.EmergencyStep, len(names))
			for i, name := range names {
				session.Emergency.Steps[i] = models.EmergencyStep{Name: name}
			}
			Logger.Warning("会话%s: 意识・呼吸双无，启动紧急引导序列", id)
		}

		s.deriveAction(session)
		return nil
	})
}

// SetLocation 确定发生场所。进入此步前意识与呼吸必须已确认。
func (s *WorkflowService) SetLocation(id string, choice models.LocationChoice) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if !session.Triage.Conscious.IsSet() || !session.Triage.Breathing.IsSet() {
			return ErrTriageIncomplete
		}
		if !choice.Resolved() {
			return ErrLocationUnresolved
		}
		// 匹配・手动・不明三者互斥，后两者在匹配存在时清空
		if choice.LocationID != "" {
			if s.master.Snapshot().FindLocation(choice.LocationID) < 0 {
				return ErrLocationNotFound
			}
			choice.Manual = ""
			choice.Unknown = false
		} else if choice.Manual != "" {
			choice.Unknown = false
		}
		session.Location = choice
		if session.State == models.StateTriageEntered {
			session.State = models.StateLocationSet
		}
		return nil
	})
}

// SetAccident 选择事故类型・受伤部位・自由备注
func (s *WorkflowService) SetAccident(id, situationID string, bodyPartIDs []string, note string) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if situationID != "" {
			if s.master.Snapshot().FindSituation(situationID) < 0 {
				return ErrSituationNotFound
			}
		}
		session.SituationID = situationID
		session.BodyPartIDs = bodyPartIDs
		session.Note = note
		if session.State == models.StateLocationSet {
			session.State = models.StateAccidentTagged
		}
		s.deriveAction(session)
		return nil
	})
}

// SetVictim 确定被灾者。名簿匹配与明确不明二择一。
func (s *WorkflowService) SetVictim(id string, choice models.VictimChoice) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if !choice.Resolved() {
			return ErrVictimUnresolved
		}
		if choice.StaffID != "" {
			if s.master.Snapshot().FindStaff(choice.StaffID) < 0 {
				return ErrStaffNotFound
			}
			choice.Unknown = false
		}
		session.Victim = choice
		if session.State == models.StateAccidentTagged || session.State == models.StateLocationSet {
			session.State = models.StateVictimSet
		}
		return nil
	})
}

// SkipToReview 从任意状态直接跳到确认画面。
// 场所和被灾者不允许"永远未定"地进入确认：未定项按明确不明补齐。
func (s *WorkflowService) SkipToReview(id string) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if !session.Triage.Conscious.IsSet() || !session.Triage.Breathing.IsSet() {
			return ErrTriageIncomplete
		}
		if !session.Location.Resolved() {
			session.Location.Unknown = true
		}
		if !session.Victim.Resolved() {
			session.Victim.Unknown = true
		}
		session.State = models.StateReviewed
		s.deriveAction(session)
		return nil
	})
}

// ConfirmEmergencyStep 确认紧急引导序列的当前步骤（完成或跳过）。
// 只能按固定顺序逐步前进，重复确认已过步骤是无操作。
func (s *WorkflowService) ConfirmEmergencyStep(id, step string, done bool) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if !session.Emergency.Triggered {
			return ErrStepUnknown
		}
		if !session.Emergency.Active() {
			// 序列已结束，按无操作处理
			return nil
		}
		current := &session.Emergency.Steps[session.Emergency.Current]
		if current.Name != step {
			// 已过或未到的步骤: 无操作（幂等）
			return nil
		}
		if done {
			current.Done = true
		} else {
			current.Skipped = true
		}
		session.Emergency.Current++
		return nil
	})
}

// MarkSent 标记报告已交给外部邮件/SMS客户端。
// 这是流程的终点动作，本系统不追踪送达与否。
func (s *WorkflowService) MarkSent(id string) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if session.State != models.StateReviewed {
			return errors.New("尚未进入确认画面")
		}
		session.State = models.StateSent
		return nil
	})
}

// MarkCopied 标记报告文本已复制
func (s *WorkflowService) MarkCopied(id string) (*models.ReportSession, error) {
	return s.mutate(id, func(session *models.ReportSession) error {
		if session.State != models.StateReviewed {
			return errors.New("尚未进入确认画面")
		}
		session.State = models.StateCopied
		return nil
	})
}

// SetContinuation 挂一个一次性回调（例如关闭覆盖层后的后续动作）
func (s *WorkflowService) SetContinuation(id string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[id]; ok {
		entry.continuation = fn
	}
}

// ConsumeContinuation 原子地取出并清空回调后执行。
// 第二次消费是无操作，绝不会重复执行。
func (s *WorkflowService) ConsumeContinuation(id string) bool {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	var fn func()
	if ok {
		fn = entry.continuation
		entry.continuation = nil
	}
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// mutate 在锁内对会话执行变更
func (s *WorkflowService) mutate(id string, fn func(*models.ReportSession) error) (*models.ReportSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	session := entry.session
	if session.State == models.StateSent || session.State == models.StateCopied {
		return nil, ErrReportFinalized
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	return cloneSession(session), nil
}

// deriveAction 推导推荐动作: 意识或呼吸为"无"一律紧急，
// 否则采用所选事故类型的默认动作，未选时按观察处理。
func (s *WorkflowService) deriveAction(session *models.ReportSession) {
	if session.Triage.Conscious == models.TriNo || session.Triage.Breathing == models.TriNo {
		session.Action = models.ActionEmergency
		return
	}
	if session.SituationID != "" {
		doc := s.master.Snapshot()
		if idx := doc.FindSituation(session.SituationID); idx >= 0 {
			session.Action = doc.Situations[idx].DefaultAction
			return
		}
	}
	session.Action = models.ActionObserve
}

// BuildPreview 按所选事故类型的模板渲染通知内容。
// 收件人为启用中的通知组与被灾者所属会社地址的去重并集。
func (s *WorkflowService) BuildPreview(id string) (*models.Preview, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	doc := s.master.Snapshot()
	values := s.placeholderValues(session, doc)

	subject := "【事故報告】{location}"
	body := "発生場所: {location}\n事故種別: {situation} {tags}\n被災者: {victim}\n容態: {triage}\n備考: {note}\n発生時刻: {time}"
	var sit *models.Situation
	if session.SituationID != "" {
		if idx := doc.FindSituation(session.SituationID); idx >= 0 {
			sit = &doc.Situations[idx]
			if sit.SubjectTemplate != "" {
				subject = sit.SubjectTemplate
			}
			if sit.BodyTemplate != "" {
				body = sit.BodyTemplate
			}
		}
	}

	return &models.Preview{
		Recipients: s.collectRecipients(session, sit, doc),
		Subject:    renderTemplate(subject, values),
		Body:       renderTemplate(body, values),
	}, nil
}

// placeholderValues 汇总模板占位符的取值
func (s *WorkflowService) placeholderValues(session *models.ReportSession, doc *models.MasterDocument) map[string]string {
	values := map[string]string{
		"note": session.Note,
		"time": session.UpdatedAt.Format("2006-01-02 15:04"),
	}

	// 发生场所
	switch {
	case session.Location.LocationID != "":
		values["location"] = "不明"
		if idx := doc.FindLocation(session.Location.LocationID); idx >= 0 {
			values["location"] = doc.Locations[idx].Name
		}
	case session.Location.Manual != "":
		values["location"] = session.Location.Manual
	default:
		values["location"] = "不明"
	}

	// 被灾者
	values["victim"] = "不明"
	values["victim_id"] = ""
	if session.Victim.StaffID != "" {
		if idx := doc.FindStaff(session.Victim.StaffID); idx >= 0 {
			values["victim"] = doc.Staff[idx].Name + "（" + doc.Staff[idx].ID + "）"
			values["victim_id"] = doc.Staff[idx].ID
		}
	}

	// 事故类型与指引
	values["situation"] = ""
	values["guidance"] = ""
	if session.SituationID != "" {
		if idx := doc.FindSituation(session.SituationID); idx >= 0 {
			values["situation"] = doc.Situations[idx].Label
			values["guidance"] = doc.Situations[idx].Guidance[session.Action]
		}
	}

	// 受伤部位标签
	var parts []string
	for _, bpID := range session.BodyPartIDs {
		for _, bp := range doc.BodyParts {
			if bp.ID == bpID {
				parts = append(parts, bp.Label)
				break
			}
		}
	}
	values["tags"] = strings.Join(parts, "・")

	values["triage"] = triageSummary(session.Triage)
	return values
}

// triageSummary 容态摘要文案
func triageSummary(t models.Triage) string {
	label := func(v models.TriState) string {
		switch v {
		case models.TriYes:
			return "あり"
		case models.TriNo:
			return "なし"
		case models.TriUnknown:
			return "不明"
		default:
			return "未確認"
		}
	}
	return "意識:" + label(t.Conscious) +
		" 呼吸:" + label(t.Breathing) +
		" 出血:" + label(t.Bleeding) +
		" 痛み:" + label(t.Pain)
}

// collectRecipients 启用中的通知组地址 + 被灾者所属会社地址，去重保序
func (s *WorkflowService) collectRecipients(session *models.ReportSession, sit *models.Situation, doc *models.MasterDocument) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		out = append(out, addr)
	}

	// 事故类型按动作配置的通知组；未选类型时对所有启用组广播
	var groupIDs []string
	if sit != nil {
		groupIDs = sit.Recipients[session.Action]
	} else {
		for _, g := range doc.ContactGroups {
			groupIDs = append(groupIDs, g.ID)
		}
	}
	for _, gid := range groupIDs {
		idx := doc.FindContactGroup(gid)
		if idx < 0 || !doc.ContactGroups[idx].Enabled {
			continue
		}
		for _, addr := range doc.ContactGroups[idx].Emails {
			add(addr)
		}
	}

	// 被灾者所属会社
	if session.Victim.StaffID != "" {
		if si := doc.FindStaff(session.Victim.StaffID); si >= 0 && doc.Staff[si].CompanyID != "" {
			if ci := doc.FindCompany(doc.Staff[si].CompanyID); ci >= 0 {
				for _, addr := range doc.Companies[ci].Emails {
					add(addr)
				}
			}
		}
	}
	return out
}

// renderTemplate 替换模板中的{placeholder}
func renderTemplate(tpl string, values map[string]string) string {
	out := tpl
	for key, val := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", val)
	}
	return strings.TrimSpace(out)
}

// BuildMailURI 组装mailto: URI，收件人逗号连接，主题和正文URL编码
func (s *WorkflowService) BuildMailURI(p *models.Preview) string {
	return "mailto:" + strings.Join(p.Recipients, ",") +
		"?subject=" + encodeURIComponent(p.Subject) +
		"&body=" + encodeURIComponent(p.Body)
}

// BuildSMSURI 组装sms: URI
func (s *WorkflowService) BuildSMSURI(numbers []string, body string) string {
	return "sms:" + strings.Join(numbers, ",") + "?body=" + encodeURIComponent(body)
}

// BuildTelURI 组装tel: URI（紧急呼叫）
func (s *WorkflowService) BuildTelURI(number string) string {
	return "tel:" + number
}

// encodeURIComponent 空格编码为%20而不是+，便于邮件客户端解析
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// cloneSession 返回会话的浅层安全拷贝（切片复制）
func cloneSession(in *models.ReportSession) *models.ReportSession {
	out := *in
	if in.BodyPartIDs != nil {
		out.BodyPartIDs = append([]string(nil), in.BodyPartIDs...)
	}
	if in.Emergency.Steps != nil {
		out.Emergency.Steps = append([]models.EmergencyStep(nil), in.Emergency.Steps...)
	}
	return &out
}
