package auth

import (
	"context"
	"errors"
	"fmt"

	"utility-kpi/internal/domain/auth"
)

// ErrForbidden 角色不具備所需權限。
var ErrForbidden = errors.New("forbidden")

// UserRepository 存取使用者；查無資料回 auth.ErrUserNotFound。
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// PasswordHasher 驗證密碼。
type PasswordHasher interface {
	Compare(hashed, plain string) bool
}

// TokenIssuer 簽發 access token。
type TokenIssuer interface {
	Issue(ctx context.Context, user auth.User) (auth.Token, error)
}

// Permission 與 domain 的權限相同，方便介面層只依賴此套件。
type Permission = auth.Permission

const (
	PermReportsRead     = auth.PermReportsRead
	PermExportCSV       = auth.PermExportCSV
	PermIngestionReload = auth.PermIngestionReload
	PermSystemHealth    = auth.PermSystemHealth
)

// LoginUseCase 驗證帳密並簽發 token。
type LoginUseCase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewLoginUseCase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User  auth.User
	Token auth.Token
}

// Execute 帳號不存在與密碼錯誤都回 ErrInvalidCredentials；停用帳號回 ErrUserDisabled。
func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	email := auth.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, auth.ErrInvalidCredentials
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if errors.Is(err, auth.ErrUserNotFound) {
		return LoginResult{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if !uc.hasher.Compare(user.Password, input.Password) {
		return LoginResult{}, auth.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return LoginResult{}, auth.ErrUserDisabled
	}

	token, err := uc.tokens.Issue(ctx, user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{User: user, Token: token}, nil
}

// Authorize 解析 token 內的角色字串並檢查權限。
func Authorize(role string, perm Permission) error {
	r, err := auth.ParseRole(role)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if !r.Can(perm) {
		return fmt.Errorf("%w: role %s lacks %s", ErrForbidden, r, perm)
	}
	return nil
}
