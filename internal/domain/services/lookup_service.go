package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"lifeline-http-service/internal/domain/models"
)

var (
	// 标签字段形式，如 "職員ID:S001"、"ID: A-00123"（归一化后冒号为半角）
	labeledIDPattern = regexp.MustCompile(`ID:\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
	// 裸token形式，如 "S001"、"A-00123"
	bareTokenPattern = regexp.MustCompile(`([A-Za-z]\w*-?[0-9]{1,6})`)
	// 竖线分隔legacy载荷的前导类别标签
	payloadTagPattern = regexp.MustCompile(`^(V[0-9]+|LOC|STF)$`)
	// 压缩空白用
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// InterfaceLookupService defines the lookup service interface
type InterfaceLookupService interface {
	ExtractIdentifier(text string) string
	ResolveStaff(token string) (*models.StaffRecord, error)
	ResolveLocation(token string) (*models.Location, error)
}

// LookupService 从粘贴文本/扫码载荷中抽取标识并在名簿中解析
type LookupService struct {
	master InterfaceMasterService
}

// NewLookupService 创建查找服务
func NewLookupService(master InterfaceMasterService) *LookupService {
	return &LookupService{
		master: master,
	}
}

// ExtractIdentifier 按固定顺序套用抽取规则，返回首个命中的token；
// 全部落空时返回空串。归一化和压缩空白两种形态都会尝试，
// 以容忍带装饰字符的扫码载荷。
func (s *LookupService) ExtractIdentifier(text string) string {
	normalized := NormalizeText(text)
	if normalized == "" {
		return ""
	}
	compacted := whitespacePattern.ReplaceAllString(normalized, "")

	for _, input := range []string{normalized, compacted} {
		if token := extractFrom(input); token != "" {
			return token
		}
	}
	return ""
}

// extractFrom 规则链: JSON载荷 → 竖线分隔legacy载荷 → 标签字段 → 裸token
func extractFrom(text string) string {
	// JSON对象载荷，取 id / staff_id / staffId 字段
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			for _, key := range []string{"id", "staff_id", "staffId"} {
				if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
					return strings.TrimSpace(v)
				}
			}
		}
	}

	// 竖线分隔legacy载荷，如 "V1|S001|氏名"、"LOC|北定盤1"
	if strings.Contains(trimmed, "|") {
		fields := strings.Split(trimmed, "|")
		for i, f := range fields {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			// 跳过前导类别标签
			if i == 0 && payloadTagPattern.MatchString(f) && len(fields) > 1 {
				continue
			}
			return f
		}
	}

	// 标签字段形式
	if m := labeledIDPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	// 裸token形式
	if m := bareTokenPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return ""
}

// ResolveStaff 按固定顺序在名簿中解析token:
// 登录码精确一致 → 去空白登录码一致 → 职员ID忽略大小写一致 → 姓名精确一致。
// 首个命中即返回，不做进一步排序（同名时取数组顺序靠前者）。
func (s *LookupService) ResolveStaff(token string) (*models.StaffRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrStaffNotFound
	}
	doc := s.master.Snapshot()
	compactToken := whitespacePattern.ReplaceAllString(token, "")

	for i := range doc.Staff {
		if doc.Staff[i].QR != "" && doc.Staff[i].QR == token {
			return &doc.Staff[i], nil
		}
	}
	for i := range doc.Staff {
		qr := whitespacePattern.ReplaceAllString(doc.Staff[i].QR, "")
		if qr != "" && qr == compactToken {
			return &doc.Staff[i], nil
		}
	}
	for i := range doc.Staff {
		if strings.EqualFold(doc.Staff[i].ID, token) {
			return &doc.Staff[i], nil
		}
	}
	for i := range doc.Staff {
		if doc.Staff[i].Name == token {
			return &doc.Staff[i], nil
		}
	}
	return nil, ErrStaffNotFound
}

// ResolveLocation 场所解析，在职员规则之上追加双向包含匹配
func (s *LookupService) ResolveLocation(token string) (*models.Location, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrLocationNotFound
	}
	doc := s.master.Snapshot()
	compactToken := whitespacePattern.ReplaceAllString(token, "")

	for i := range doc.Locations {
		if doc.Locations[i].QR != "" && doc.Locations[i].QR == token {
			return &doc.Locations[i], nil
		}
	}
	for i := range doc.Locations {
		qr := whitespacePattern.ReplaceAllString(doc.Locations[i].QR, "")
		if qr != "" && qr == compactToken {
			return &doc.Locations[i], nil
		}
	}
	for i := range doc.Locations {
		if strings.EqualFold(doc.Locations[i].ID, token) {
			return &doc.Locations[i], nil
		}
	}
	for i := range doc.Locations {
		if doc.Locations[i].Name == token {
			return &doc.Locations[i], nil
		}
	}
	for i := range doc.Locations {
		name := doc.Locations[i].Name
		if name != "" && (strings.Contains(name, token) || strings.Contains(token, name)) {
			return &doc.Locations[i], nil
		}
	}
	return nil, ErrLocationNotFound
}

// NormalizeText 输入归一化: 全角英数・记号转半角、CRLF转LF、去首尾空白
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= '０' && r <= '９':
			r = r - '０' + '0'
		case r >= 'Ａ' && r <= 'Ｚ':
			r = r - 'Ａ' + 'A'
		case r >= 'ａ' && r <= 'ｚ':
			r = r - 'ａ' + 'a'
		case r == '　': // 全角空格
			r = ' '
		case r == '：':
			r = ':'
		case r == '｜':
			r = '|'
		case r == '－': // 全角减号
			r = '-'
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
