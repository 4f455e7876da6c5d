package models

// 推荐对应动作
const (
	ActionEmergency = "emergency" // 紧急呼叫
	ActionObserve   = "observe"   // 观察对应
)

// Situation 事故类型定义。模板中的{placeholder}在生成预览时替换。
type Situation struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Icon             string `json:"icon,omitempty"`
	RequiresBodyPart bool   `json:"requires_body_part"`

	// DefaultAction 为该事故类型的默认推荐动作: emergency 或 observe
	DefaultAction string `json:"default_action"`

	// Recipients 按动作映射到通知对象组ID列表
	Recipients map[string][]string `json:"recipients,omitempty"`

	// Guidance 按动作映射到现场指引文案
	Guidance map[string]string `json:"guidance,omitempty"`

	SubjectTemplate string `json:"subject_template,omitempty"`
	BodyTemplate    string `json:"body_template,omitempty"`
}

// BodyPart 受伤部位选项
type BodyPart struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
