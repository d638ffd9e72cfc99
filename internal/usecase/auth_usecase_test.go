package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type SellerProfileRepoMock struct{ mock.Mock }

func (m *SellerProfileRepoMock) Create(ctx context.Context, profile *model.SellerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *SellerProfileRepoMock) FindByID(ctx context.Context, id int64) (model.SellerProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.SellerProfile)
	return p, args.Error(1)
}

func (m *SellerProfileRepoMock) FindByUserID(ctx context.Context, userID int64) (model.SellerProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.SellerProfile)
	return p, args.Error(1)
}

func (m *SellerProfileRepoMock) Update(ctx context.Context, profile model.SellerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *SellerProfileRepoMock) SetVerified(ctx context.Context, id int64, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

func (m *SellerProfileRepoMock) ExistsByTaxID(ctx context.Context, taxID string) (bool, error) {
	args := m.Called(ctx, taxID)
	return args.Bool(0), args.Error(1)
}

// validatorは素通しのスタブで十分
type AuthValidatorStub struct{}

func (s *AuthValidatorStub) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	return nil
}

func (s *AuthValidatorStub) ValidateSellerRegister(ctx context.Context, name string, email string, password string, shopName string, taxID string) error {
	return nil
}

func (s *AuthValidatorStub) ValidateLogin(ctx context.Context, email string, password string) error {
	return nil
}

func newAuthFixture() (*UserRepoMock, *SellerProfileRepoMock, *usecase.AuthUsecase) {
	users := new(UserRepoMock)
	sellers := new(SellerProfileRepoMock)
	tx := &TxManagerStub{Repos: &TxReposStub{users: users, sellerProfiles: sellers}}
	cfg := config.Config{JWTSecret: "test_secret"}
	return users, sellers, usecase.NewAuthUsecase(cfg, users, tx, &AuthValidatorStub{})
}

func TestRegister_HashesPassword(t *testing.T) {
	users, _, uc := newAuthFixture()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		//平文は保存しない
		if u.PasswordHash == "password123" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil &&
			u.Role == model.RoleUser
	})).Return(nil)

	out, err := uc.Register(ctx, usecase.AuthRegisterRequest{
		Name: "Alice", Email: "a@example.com", Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "USER", out.User.Role)
	users.AssertExpectations(t)
}

func TestRegisterSeller_CreatesUnverifiedProfile(t *testing.T) {
	users, sellers, uc := newAuthFixture()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleSeller
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)

	sellers.On("Create", ctx, mock.MatchedBy(func(p *model.SellerProfile) bool {
		return p.UserID == 10 && p.ShopName == "My Shop" && !p.IsVerified
	})).Return(nil)

	out, err := uc.RegisterSeller(ctx, usecase.SellerRegisterRequest{
		Name: "Shop Owner", Email: "s@example.com", Password: "password123",
		ShopName: "My Shop", TaxID: "22AAAAA0000A1Z5",
	})

	assert.NoError(t, err)
	assert.Equal(t, "SELLER", out.User.Role)
	assert.False(t, out.Profile.IsVerified)
	sellers.AssertExpectations(t)
}

// ショップ情報の作成に失敗したらユーザー作成ごと巻き戻す（エラーでTxを抜ける）
func TestRegisterSeller_ProfileFailureAbortsTx(t *testing.T) {
	users, sellers, uc := newAuthFixture()
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)
	sellers.On("Create", ctx, mock.Anything).Return(assert.AnError)

	_, err := uc.RegisterSeller(ctx, usecase.SellerRegisterRequest{
		Name: "Shop Owner", Email: "s@example.com", Password: "password123",
		ShopName: "My Shop", TaxID: "22AAAAA0000A1Z5",
	})

	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestLogin_IssuesHS256TokenWithRole(t *testing.T) {
	users, _, uc := newAuthFixture()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, Email: "a@example.com", PasswordHash: string(hash),
		Role: model.RoleUser, IsActive: true,
	}, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	out, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "a@example.com", Password: "password123"})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.Token.AccessToken)

	tok, err := jwt.Parse(out.Token.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	assert.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "USER", claims["role"])
	assert.Equal(t, float64(1), claims["sub"])
}

func TestLogin_WrongPassword(t *testing.T) {
	users, _, uc := newAuthFixture()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, PasswordHash: string(hash), IsActive: true,
	}, nil)

	_, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "a@example.com", Password: "wrong-password"})

	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestLogin_InactiveUser(t *testing.T) {
	users, _, uc := newAuthFixture()
	ctx := context.Background()

	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, IsActive: false,
	}, nil)

	_, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "a@example.com", Password: "password123"})

	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users, _, uc := newAuthFixture()
	ctx := context.Background()

	users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, nil)

	_, err := uc.Login(ctx, usecase.AuthLoginRequest{Email: "nobody@example.com", Password: "password123"})

	assertHTTPStatus(t, err, http.StatusUnauthorized)
}
