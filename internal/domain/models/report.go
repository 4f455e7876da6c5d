package models

import "time"

// TriState 三值选择: yes / no / unknown。空串表示未选择。
type TriState string

const (
	TriUnset   TriState = ""
	TriYes     TriState = "yes"
	TriNo      TriState = "no"
	TriUnknown TriState = "unknown"
)

// IsSet 判断是否已做出选择（yes/no/unknown均算已选择）
func (t TriState) IsSet() bool {
	return t == TriYes || t == TriNo || t == TriUnknown
}

// ReportState 报告会话的状态机状态
type ReportState string

const (
	StateIdle           ReportState = "idle"
	StateTriageEntered  ReportState = "triage_entered"
	StateLocationSet    ReportState = "location_set"
	StateAccidentTagged ReportState = "accident_tagged"
	StateVictimSet      ReportState = "victim_set"
	StateReviewed       ReportState = "reviewed"
	StateSent           ReportState = "sent"
	StateCopied         ReportState = "copied"
)

// Triage 容态确认（意识・呼吸・出血・疼痛）
type Triage struct {
	Conscious TriState `json:"conscious"`
	Breathing TriState `json:"breathing"`
	Bleeding  TriState `json:"bleeding"`
	Pain      TriState `json:"pain"`
}

// LocationChoice 发生场所的选择。已匹配/手动输入/明确不明三者互斥。
type LocationChoice struct {
	LocationID string `json:"location_id,omitempty"` // 名簿匹配
	Manual     string `json:"manual,omitempty"`      // 手动输入
	Unknown    bool   `json:"unknown,omitempty"`     // 明确选择"不明"
}

// Resolved 判断场所是否已确定（匹配、手动或明确不明）
func (c LocationChoice) Resolved() bool {
	return c.LocationID != "" || c.Manual != "" || c.Unknown
}

// VictimChoice 被灾者的选择。名簿匹配与明确不明互斥。
type VictimChoice struct {
	StaffID string `json:"staff_id,omitempty"`
	Unknown bool   `json:"unknown,omitempty"`
}

// Resolved 判断被灾者是否已确定
func (c VictimChoice) Resolved() bool {
	return c.StaffID != "" || c.Unknown
}

// 紧急引导序列的固定步骤，顺序不可变
const (
	StepCallAmbulance   = "call_ambulance"
	StepSendSMS         = "send_sms"
	StepStartCPR        = "start_cpr"
	StepRetrieveAED     = "retrieve_aed"
	StepRetrieveStretch = "retrieve_stretcher"
	StepConclude        = "conclude"
)

// EmergencyStepNames 按固定顺序返回引导步骤名
func EmergencyStepNames() []string {
	return []string{
		StepCallAmbulance,
		StepSendSMS,
		StepStartCPR,
		StepRetrieveAED,
		StepRetrieveStretch,
		StepConclude,
	}
}

// EmergencyStep 引导序列中的一步，done/skip二择
type EmergencyStep struct {
	Name    string `json:"name"`
	Done    bool   `json:"done"`
	Skipped bool   `json:"skipped"`
}

// EmergencySubFlow 意识・呼吸双无时触发的固定确认序列。
// Triggered为一次性标志：同一会话内只触发一次，容态来回切换不会重启序列。
type EmergencySubFlow struct {
	Triggered bool            `json:"triggered"`
	Current   int             `json:"current"` // 当前待确认步骤的下标
	Steps     []EmergencyStep `json:"steps,omitempty"`
}

// Active 判断序列是否进行中
func (f *EmergencySubFlow) Active() bool {
	return f.Triggered && f.Current < len(f.Steps)
}

// ReportSession 一次事故报告的会话状态。仅存在于进程内，不持久化。
type ReportSession struct {
	ID    string      `json:"id"`
	State ReportState `json:"state"`

	Triage      Triage         `json:"triage"`
	Location    LocationChoice `json:"location"`
	SituationID string         `json:"situation_id,omitempty"`
	BodyPartIDs []string       `json:"body_part_ids,omitempty"`
	Note        string         `json:"note,omitempty"`
	Victim      VictimChoice   `json:"victim"`

	// Action 为派生的推荐动作: emergency / observe
	Action string `json:"action,omitempty"`

	Emergency EmergencySubFlow `json:"emergency"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preview 渲染完成的通知内容，交给外部邮件/SMS客户端的最终产物
type Preview struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}
