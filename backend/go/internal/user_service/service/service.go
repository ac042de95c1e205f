package service

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/internal/user_service/store"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("Username already exists")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("No active account found with the given credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError 描述一个不合法的注册字段。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// RecordPurger 删除某个用户的全部摘要记录。
type RecordPurger interface {
	DeleteByUser(ctx context.Context, userID uint) error
}

// RegisterInput 是注册所需的字段。
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Service 封装了账户相关的业务逻辑。
type Service struct {
	store  *store.Store
	tokens *TokenIssuer
	purger RecordPurger
}

// NewService 创建一个新的 Service 实例。purger 可以为 nil，此时只依赖数据库外键级联删除。
func NewService(s *store.Store, cfg config.AuthConfig, purger RecordPurger) *Service {
	return &Service{
		store:  s,
		tokens: NewTokenIssuer(cfg),
		purger: purger,
	}
}

// Tokens 返回令牌签发器，供认证中间件校验 access 令牌。
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// dummyHash 用于用户不存在时的密码比较，使两种失败耗时相近。
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("abridge-dummy-password"), bcrypt.DefaultCost)

// Register 校验输入并创建新用户。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	taken, err := s.store.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("检查用户名失败: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = s.store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("检查邮箱失败: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// 并发注册时唯一约束兜底，重新判断是哪一个字段冲突。
			if exists, _ := s.store.EmailExists(ctx, in.Email); exists {
				if taken, _ := s.store.UsernameExists(ctx, in.Username); !taken {
					return nil, ErrEmailTaken
				}
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Login 校验用户名和密码，成功后签发 access/refresh 令牌对。
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokens.IssuePair(user.ID)
}

// Refresh 用 refresh 令牌换取新的 access 令牌。用户已被删除时令牌失效。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Parse(refreshToken, TokenRefresh)
	if err != nil {
		return "", err
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("查询用户失败: %w", err)
	}
	return s.tokens.Issue(userID, TokenAccess)
}

// DeleteAccount 删除用户及其全部摘要记录。
func (s *Service) DeleteAccount(ctx context.Context, userID uint) error {
	if s.purger != nil {
		if err := s.purger.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("删除摘要记录失败: %w", err)
		}
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("删除用户失败: %w", err)
	}
	return nil
}

// Ping 检查账户存储是否可用。
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func validateRegistration(in RegisterInput) error {
	if in.Username == "" {
		return &ValidationError{Field: "username", Message: "This field is required."}
	}
	if in.Email == "" {
		return &ValidationError{Field: "email", Message: "This field is required."}
	}
	if in.Password == "" {
		return &ValidationError{Field: "password", Message: "This field is required."}
	}

	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 150 {
		return &ValidationError{Field: "username", Message: "Username must be between 3 and 150 characters."}
	}
	for _, r := range in.Username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("@.+-_", r) {
			return &ValidationError{Field: "username", Message: "Username may contain only letters, digits and @/./+/-/_ characters."}
		}
	}

	if utf8.RuneCountInString(in.Password) < 8 {
		return &ValidationError{Field: "password", Message: "This password is too short. It must contain at least 8 characters."}
	}
	var hasLetter, hasDigit bool
	for _, r := range in.Password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return &ValidationError{Field: "password", Message: "Password must contain at least one letter and one digit."}
	}
	if strings.EqualFold(in.Password, in.Username) {
		return &ValidationError{Field: "password", Message: "The password is too similar to the username."}
	}
	return nil
}
