package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifeline-http-service/internal/infrastructure/config"
	Logger "lifeline-http-service/pkg/logger"
)

// 门禁相关的业务错误
var (
	ErrPasswordNotSet     = errors.New("尚未设置管理密码")
	ErrPasswordAlreadySet = errors.New("管理密码已设置")
	ErrPasswordMismatch   = errors.New("两次输入的密码不一致")
	ErrPasswordTooShort   = errors.New("密码长度不足")
	ErrPasswordIncorrect  = errors.New("密码错误")
	ErrSessionExpired     = errors.New("长时间无操作，已自动上锁")
)

// LockedOutError 表示门禁处于锁定期，附带剩余等待时间
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("连续失败次数过多，已锁定，%d秒后可重试", int(e.RetryAfter.Seconds()+0.5))
}

// InterfaceGateService defines the access gate service interface
type InterfaceGateService interface {
	PasswordSet() bool
	SetInitialPassword(ctx context.Context, p1, p2 string) error
	ChangePassword(ctx context.Context, old, p1, p2 string) error
	AttemptLogin(password string) (token string, remaining int, err error)
	Logout()
	CheckActive() error
	Touch()
}

// GateService 管理密码门禁。
// 状态机: NoPasswordSet → Locked → Unlocked → Locked。
// 指纹持久化在主数据文档里；失败计数和锁定截止时间只存在于进程内，
// 重启即清零（保留观测到的原始行为，不自作主张修补）。
type GateService struct {
	master InterfaceMasterService
	jwt    InterfaceJWTService
	cfg    *config.Config

	mu            sync.Mutex
	failCount     int
	lockoutUntil  time.Time
	unlocked      bool
	lastActivity  time.Time

	// now 可在测试中替换以推进时钟
	now func() time.Time
}

// NewGateService 创建门禁服务
func NewGateService(master InterfaceMasterService, jwtService InterfaceJWTService, cfg *config.Config) *GateService {
	return &GateService{
		master: master,
		jwt:    jwtService,
		cfg:    cfg,
		now:    time.Now,
	}
}

// PasswordSet 判断是否已设置管理密码（否则进入首次设置流程）
func (s *GateService) PasswordSet() bool {
	return s.master.Credentials().AdminPassHash != ""
}

// SetInitialPassword 首次设置管理密码。
// 要求两次输入一致且不短于配置的最小长度；成功后保存指纹并清零失败计数。
func (s *GateService) SetInitialPassword(ctx context.Context, p1, p2 string) error {
	if s.PasswordSet() {
		return ErrPasswordAlreadySet
	}
	if err := s.validateNewPassword(p1, p2); err != nil {
		return err
	}

	if err := s.master.SetAdminPassHash(ctx, Fingerprint(p1)); err != nil {
		return err
	}

	s.mu.Lock()
	s.failCount = 0
	s.lockoutUntil = time.Time{}
	s.mu.Unlock()

	Logger.Info("管理密码已设置")
	return nil
}

// ChangePassword 在已解锁状态下变更管理密码
func (s *GateService) ChangePassword(ctx context.Context, old, p1, p2 string) error {
	if !s.PasswordSet() {
		return ErrPasswordNotSet
	}
	if Fingerprint(old) != s.master.Credentials().AdminPassHash {
		return ErrPasswordIncorrect
	}
	if err := s.validateNewPassword(p1, p2); err != nil {
		return err
	}
	return s.master.SetAdminPassHash(ctx, Fingerprint(p1))
}

func (s *GateService) validateNewPassword(p1, p2 string) error {
	if len([]rune(p1)) < s.cfg.MinPasswordLength {
		return fmt.Errorf("%w: 至少需要%d个字符", ErrPasswordTooShort, s.cfg.MinPasswordLength)
	}
	if p1 != p2 {
		return ErrPasswordMismatch
	}
	return nil
}

// AttemptLogin 校验密码指纹。
// 匹配: 解锁并签发管理令牌，失败计数清零。
// 不匹配: 计数加一并返回剩余次数；达到上限时进入定时锁定且计数清零。
// 锁定期内无论密码对错一律拒绝。
func (s *GateService) AttemptLogin(password string) (string, int, error) {
	if !s.PasswordSet() {
		return "", 0, ErrPasswordNotSet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Before(s.lockoutUntil) {
		return "", 0, &LockedOutError{RetryAfter: s.lockoutUntil.Sub(now)}
	}

	if Fingerprint(password) == s.master.Credentials().AdminPassHash {
		s.failCount = 0
		s.unlocked = true
		s.lastActivity = now

		token, err := s.jwt.GenerateToken("admin")
		if err != nil {
			return "", 0, err
		}
		Logger.Info("管理画面已解锁")
		return token, 0, nil
	}

	s.failCount++
	remaining := s.cfg.MaxLoginAttempts - s.failCount
	if s.failCount >= s.cfg.MaxLoginAttempts {
		s.lockoutUntil = now.Add(time.Duration(s.cfg.LockoutSeconds) * time.Second)
		s.failCount = 0
		Logger.Warning("连续%d次密码错误，锁定%d秒", s.cfg.MaxLoginAttempts, s.cfg.LockoutSeconds)
		return "", 0, &LockedOutError{RetryAfter: time.Duration(s.cfg.LockoutSeconds) * time.Second}
	}
	return "", remaining, ErrPasswordIncorrect
}

// Logout 显式上锁
func (s *GateService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked = false
}

// CheckActive 校验管理会话是否仍然有效。
// 超过无操作时限即自动上锁并返回ErrSessionExpired；有效时顺带刷新活动时间。
func (s *GateService) CheckActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return ErrSessionExpired
	}

	now := s.now()
	deadline := s.lastActivity.Add(time.Duration(s.cfg.AutoLockSeconds) * time.Second)
	if now.After(deadline) {
		s.unlocked = false
		Logger.Info("管理会话因无操作自动上锁")
		return ErrSessionExpired
	}
	s.lastActivity = now
	return nil
}

// Touch 记录一次用户操作，重置无操作计时
func (s *GateService) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unlocked {
		s.lastActivity = s.now()
	}
}
