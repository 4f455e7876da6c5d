package models

// EmergencyContact 紧急联系人（续柄+电话）
type EmergencyContact struct {
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// StaffRecord 职员应急档案。ID为主键，整个名簿内唯一（区分大小写）。
type StaffRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kana      string   `json:"kana,omitempty"`       // 读音假名，用于分组排序
	CompanyID string   `json:"company_id,omitempty"` // 所属会社，可为空
	Blood     string   `json:"blood,omitempty"`
	History   []string `json:"history,omitempty"`
	Medicines []string `json:"medicines,omitempty"`
	Allergies []string `json:"allergies,omitempty"`
	Doctor    string   `json:"doctor,omitempty"`

	EmergencyContact EmergencyContact `json:"emergency_contact,omitempty"`

	// QR 为扫码载荷的精确匹配串，允许带装饰字符
	QR string `json:"qr,omitempty"`
}

// Company 所属会社，持有事故通知用的邮件地址列表
type Company struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Emails []string `json:"emails,omitempty"`
}

// ContactGroup 通知对象组。Enabled由管理画面控制，关闭的组不进入收件人集合。
type ContactGroup struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Emails  []string `json:"emails,omitempty"`
	Enabled bool     `json:"enabled"`
}
