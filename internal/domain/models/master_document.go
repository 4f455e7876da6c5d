package models

// Credentials 管理凭据。只保存指纹（SHA-256十六进制摘要），绝不保存明文。
// 指纹为空表示尚未设置密码，进入首次设置流程。
type Credentials struct {
	AdminPassHash string `json:"admin_pass_hash,omitempty"`
	UserPassHash  string `json:"user_pass_hash,omitempty"`
	AdminID       string `json:"admin_id,omitempty"`
}

// MasterDocument 主数据文档：名簿、会社、场所、事故类型、通知组和凭据
// 全部装在一个JSON文档里，整体读写，没有增量持久化。
type MasterDocument struct {
	Version       int            `json:"version"`
	Companies     []Company      `json:"companies"`
	Staff         []StaffRecord  `json:"staff"`
	Locations     []Location     `json:"locations"`
	Situations    []Situation    `json:"situations"`
	BodyParts     []BodyPart     `json:"body_parts"`
	ContactGroups []ContactGroup `json:"contact_groups"`
	Credentials   Credentials    `json:"credentials"`
}

// FindStaff 按ID精确查找职员，返回索引；未找到时返回-1
func (d *MasterDocument) FindStaff(id string) int {
	for i := range d.Staff {
		if d.Staff[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCompany 按ID查找会社索引；未找到时返回-1
func (d *MasterDocument) FindCompany(id string) int {
	for i := range d.Companies {
		if d.Companies[i].ID == id {
			return i
		}
	}
	return -1
}

// FindLocation 按ID查找场所索引；未找到时返回-1
func (d *MasterDocument) FindLocation(id string) int {
	for i := range d.Locations {
		if d.Locations[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSituation 按ID查找事故类型索引；未找到时返回-1
func (d *MasterDocument) FindSituation(id string) int {
	for i := range d.Situations {
		if d.Situations[i].ID == id {
			return i
		}
	}
	return -1
}

// FindBodyPart 按ID查找受伤部位索引；未找到时返回-1
func (d *MasterDocument) FindBodyPart(id string) int {
	for i := range d.BodyParts {
		if d.BodyParts[i].ID == id {
			return i
		}
	}
	return -1
}

// FindContactGroup 按ID查找通知组索引；未找到时返回-1
func (d *MasterDocument) FindContactGroup(id string) int {
	for i := range d.ContactGroups {
		if d.ContactGroups[i].ID == id {
			return i
		}
	}
	return -1
}
