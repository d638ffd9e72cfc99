package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidateSellerRegister(ctx context.Context, name string, email string, password string, shopName string, taxID string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type JwtAccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SellerRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ShopName string `json:"shop_name"`
	//税番号（15桁の英数字）
	TaxID       string `json:"tax_id"`
	Description string `json:"description"`
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

type SellerRegisterResponse struct {
	User    UserDTO              `json:"user"`
	Profile *model.SellerProfile `json:"profile"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	txManager repository.TransactionManager
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		txManager: txManager,
		validator: validator,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, req.Name, req.Email, req.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//ユーザー作成
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	//保存（email重複などはrepo/validatorで弾く）
	if err := u.users.Create(ctx, user); err != nil {
		return nil, NewHTTPError(http.StatusConflict, "conflict")
	}

	return &AuthRegisterResponse{
		User: toUserDTO(user),
	}, nil
}

// 出品者登録。usersにrole=SELLERで作成し、ショップ情報も同時に作る。
func (u *AuthUsecase) RegisterSeller(ctx context.Context, req SellerRegisterRequest) (*SellerRegisterResponse, error) {
	if err := u.validator.ValidateSellerRegister(ctx, req.Name, req.Email, req.Password, req.ShopName, req.TaxID); err != nil {
		return nil, err
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleSeller,
		IsActive:     true,
	}

	//ショップ情報。確認フラグは管理者があとで立てる。
	profile := &model.SellerProfile{
		ShopName:    req.ShopName,
		Description: req.Description,
		TaxID:       req.TaxID,
		IsVerified:  false,
	}

	//ユーザーとショップ情報は同一トランザクションで作る
	err = u.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users().Create(ctx, user); err != nil {
			return NewHTTPError(http.StatusConflict, "conflict")
		}
		profile.UserID = user.ID
		if err := r.SellerProfiles().Create(ctx, profile); err != nil {
			return NewHTTPError(http.StatusConflict, "conflict")
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return nil, err
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &SellerRegisterResponse{
		User:    toUserDTO(user),
		Profile: profile,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthLoginResponse, error) {
	// 1) 入力検証
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//last_login更新
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	//access token発行
	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthLoginResponse{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken: accessToken,
			ExpiresIn:   expiresIn,
		},
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// HS256で署名したaccess tokenを発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, int, error) {
	now := time.Now()
	expiresAt := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}
