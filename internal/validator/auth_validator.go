package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"app/internal/repository"
	"app/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")

	// 税番号が既に使用済み
	ErrTaxIDAlreadyUsed = errors.New("tax id already used")
)

// 税番号は15桁の英数字（大文字）
var taxIDPattern = regexp.MustCompile(`^[0-9A-Z]{15}$`)

type authValidator struct {
	users   repository.UserRepository
	sellers repository.SellerProfileRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository, sellers repository.SellerProfileRepository) usecase.AuthValidator {
	return &authValidator{users: users, sellers: sellers}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	// 必須チェック
	if name == "" || email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return ErrInvalidInput
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// 出品者サインアップの入力を検証
func (v *authValidator) ValidateSellerRegister(ctx context.Context, name string, email string, password string, shopName string, taxID string) error {
	if err := v.ValidateRegister(ctx, name, email, password); err != nil {
		return err
	}

	if strings.TrimSpace(shopName) == "" {
		return ErrInvalidInput
	}

	// 税番号形式
	if !taxIDPattern.MatchString(taxID) {
		return ErrInvalidInput
	}

	// 税番号重複チェック（DBが必要）
	used, err := v.sellers.ExistsByTaxID(ctx, taxID)
	if err == nil && used {
		return ErrTaxIDAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
