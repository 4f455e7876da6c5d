package services

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"lifeline-http-service/internal/infrastructure/storage"
	Logger "lifeline-http-service/pkg/logger"

	"lifeline-http-service/internal/domain/models"
)

// ErrEnvironmentUnsupported 表示运行环境缺少必要的加密原语（如随机源不可用）。
// 绝不静默退化为明文。
var ErrEnvironmentUnsupported = errors.New("当前环境不支持加密操作")

const (
	keyLength   = 32 // AES-256
	nonceLength = 12 // GCM标准96位nonce
)

// Fingerprint 计算密码指纹: SHA-256十六进制摘要。
// 确定性、单向、无盐，用于设置和校验两侧。
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SealedEnvelope 密文信封。IV每次加密随机生成，从不复用。
type SealedEnvelope struct {
	IV   []byte `json:"iv"`
	Data []byte `json:"data"`
}

// InterfaceSealService defines the seal service interface
type InterfaceSealService interface {
	EnsureKey(ctx context.Context) error
	Encrypt(doc *models.MasterDocument) (*SealedEnvelope, error)
	Decrypt(env *SealedEnvelope) *models.MasterDocument
}

// SealService 主数据的对称加密服务。
// 密钥独立随机生成后持久化在密文旁的槽里（与原始设计一致），
// 不从密码派生——对能直接读存储的人不构成保密边界，这是已知并保留的限制。
type SealService struct {
	keySlot storage.Slot

	mu  sync.Mutex
	key []byte
}

// NewSealService 创建新的加密服务
func NewSealService(keySlot storage.Slot) *SealService {
	return &SealService{
		keySlot: keySlot,
	}
}

// EnsureKey 加载持久化的密钥；不存在时生成新密钥并持久化。
// 进程生命周期内只做一次，重复调用复用缓存的密钥。
func (s *SealService) EnsureKey(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return nil
	}

	raw, err := s.keySlot.Read(ctx)
	if err == nil {
		decoded, decErr := hex.DecodeString(string(raw))
		if decErr == nil && len(decoded) == keyLength {
			s.key = decoded
			return nil
		}
		Logger.Warning("密钥槽内容无效，重新生成密钥")
	} else if !errors.Is(err, storage.ErrSlotEmpty) {
		return err
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return ErrEnvironmentUnsupported
	}
	if err := s.keySlot.Write(ctx, []byte(hex.EncodeToString(key))); err != nil {
		return err
	}
	s.key = key
	return nil
}

// Encrypt 序列化文档并以AES-256-GCM加密，每次生成新的随机nonce
func (s *SealService) Encrypt(doc *models.MasterDocument) (*SealedEnvelope, error) {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()
	if key == nil {
		return nil, errors.New("密钥尚未初始化")
	}

	plaintext, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, nonceLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, ErrEnvironmentUnsupported
	}

	return &SealedEnvelope{
		IV:   iv,
		Data: gcm.Seal(nil, iv, plaintext, nil),
	}, nil
}

// Decrypt 认证并解密信封。认证失败或信封损坏时返回空文档而不报错，
// 只记录日志（保留原始实现的行为，潜在的数据丢失风险见设计说明）。
func (s *SealService) Decrypt(env *SealedEnvelope) *models.MasterDocument {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()

	empty := &models.MasterDocument{}
	if key == nil || env == nil || len(env.IV) != nonceLength {
		Logger.Warning("解密失败: 信封无效")
		return empty
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		Logger.Warning("解密失败: %v", err)
		return empty
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		Logger.Warning("解密失败: %v", err)
		return empty
	}

	plaintext, err := gcm.Open(nil, env.IV, env.Data, nil)
	if err != nil {
		Logger.Warning("解密失败: 认证不通过 (%v)", err)
		return empty
	}

	var doc models.MasterDocument
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		Logger.Warning("解密失败: 明文不是有效JSON (%v)", err)
		return empty
	}
	return &doc
}
