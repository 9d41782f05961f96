package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"yatube/config"
	"yatube/internal/errors"
	"yatube/internal/model"
	"yatube/internal/repository/interfaces"
	"yatube/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength 密码最短长度
const MinPasswordLength = 8

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	emailService   *EmailService
	tokenBlacklist map[string]time.Time
	blacklistMutex sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		emailService:   NewEmailService(),
		tokenBlacklist: make(map[string]time.Time),
	}
}

// WithEmailService 替换邮件服务
func (s *UserService) WithEmailService(es *EmailService) *UserService {
	s.emailService = es
	return s
}

// IsUsernameTaken 检查用户名是否已被使用
func (s *UserService) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	return true, nil
}

// Register 注册新用户，user.PasswordHash 传入明文密码
func (s *UserService) Register(ctx context.Context, user *model.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return fieldError("username", "This field is required.")
	}

	taken, err := s.IsUsernameTaken(ctx, user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "username already exists")
	}

	if err := ValidatePassword(user.PasswordHash, user.Username); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "生成密码哈希失败", err)
	}
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "创建用户失败", err)
	}

	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// ValidatePassword 拒绝过短、纯数字或与用户名相同的密码
func ValidatePassword(password, username string) error {
	if len([]rune(password)) < MinPasswordLength {
		return errors.New(errors.ErrWeakPassword, "This password is too short. It must contain at least 8 characters.")
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return errors.New(errors.ErrWeakPassword, "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		return errors.New(errors.ErrWeakPassword, "The password is too similar to the username.")
	}
	return nil
}

// Login 用户名密码登录
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	return s.checkPassword(user, err, password)
}

// LoginByEmail API 令牌接口使用邮箱登录
func (s *UserService) LoginByEmail(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	return s.checkPassword(user, err, password)
}

func (s *UserService) checkPassword(user *model.User, err error, password string) (*model.User, error) {
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			return nil, errors.New(errors.ErrInvalidCredentials, "invalid username or password")
		}
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		util.Logger.Info("用户登录失败，密码不正确", zap.Int("user_id", user.ID))
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid username or password")
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// GetUserByUsername 通过用户名获取用户信息
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func userLookupError(err error) error {
	if stderrors.Is(err, interfaces.ErrNotFound) {
		return errors.Wrap(errors.ErrUserNotFound, "user not found", err)
	}
	return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
}

// IssueToken 为用户签发会话令牌
func (s *UserService) IssueToken(user *model.User) (string, error) {
	token, err := util.GenerateToken(user.ID)
	if err != nil {
		return "", errors.Wrap(errors.ErrInternal, "生成令牌失败", err)
	}
	return token, nil
}

// RequestPasswordReset 邮箱不存在时同样返回成功，不暴露账户是否存在
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			util.Logger.Info("密码重置请求的邮箱不存在", zap.String("email", email))
			return nil
		}
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	return s.emailService.SendPasswordResetEmail(user.Email, user.Username)
}

// CheckPasswordResetToken 校验重置令牌并返回对应用户
func (s *UserService) CheckPasswordResetToken(ctx context.Context, token string) (*model.User, error) {
	email, err := util.ValidatePasswordResetToken(token)
	if err != nil {
		util.Logger.Info("验证密码重置令牌失败", zap.Error(err))
		return nil, errors.Wrap(errors.ErrInvalidToken, "invalid password reset link", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, interfaces.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrInvalidToken, "invalid password reset link", err)
		}
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	return user, nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.CheckPasswordResetToken(ctx, token)
	if err != nil {
		return err
	}

	if err := ValidatePassword(newPassword, user.Username); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Logger.Error("生成密码哈希失败", zap.Error(err))
		return errors.Wrap(errors.ErrInternal, "生成密码哈希失败", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		util.Logger.Error("更新用户密码失败", zap.Error(err), zap.Int("user_id", user.ID))
		return errors.Wrap(errors.ErrDatabase, "更新密码失败", err)
	}

	util.Logger.Info("密码重置成功", zap.Int("user_id", user.ID))
	return nil
}

// Logout 把当前令牌加入黑名单直到其自然过期
func (s *UserService) Logout(token string) {
	if token == "" {
		return
	}
	maxAge := config.AppConfig.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	s.blacklistMutex.Lock()
	now := time.Now()
	for t, expiry := range s.tokenBlacklist {
		if now.After(expiry) {
			delete(s.tokenBlacklist, t)
		}
	}
	s.tokenBlacklist[token] = now.Add(maxAge)
	s.blacklistMutex.Unlock()
	util.Logger.Info("用户注销，令牌已加入黑名单")
}

func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	defer s.blacklistMutex.RUnlock()
	expiry, exists := s.tokenBlacklist[token]
	return exists && time.Now().Before(expiry)
}

// CreateAdmin 创建管理员账户，createadmin 命令使用
func (s *UserService) CreateAdmin(ctx context.Context, username, email, password string) (*model.User, error) {
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: password,
		Role:         model.RoleAdmin,
	}
	if err := s.Register(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UserServiceInterface interface {
	Register(ctx context.Context, user *model.User) error
	Login(ctx context.Context, username, password string) (*model.User, error)
	LoginByEmail(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	IssueToken(user *model.User) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CheckPasswordResetToken(ctx context.Context, token string) (*model.User, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	Logout(token string)
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
