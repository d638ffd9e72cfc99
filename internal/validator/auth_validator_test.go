package validator

import (
	"context"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type usersMock struct{ mock.Mock }

func (m *usersMock) Create(ctx context.Context, user *model.User) error {
	panic("unused")
}

func (m *usersMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	panic("unused")
}

func (m *usersMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *usersMock) Update(ctx context.Context, user *model.User) error {
	panic("unused")
}

func (m *usersMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	panic("unused")
}

type sellersMock struct{ mock.Mock }

func (m *sellersMock) Create(ctx context.Context, profile *model.SellerProfile) error {
	panic("unused")
}

func (m *sellersMock) FindByID(ctx context.Context, id int64) (model.SellerProfile, error) {
	panic("unused")
}

func (m *sellersMock) FindByUserID(ctx context.Context, userID int64) (model.SellerProfile, error) {
	panic("unused")
}

func (m *sellersMock) Update(ctx context.Context, profile model.SellerProfile) error {
	panic("unused")
}

func (m *sellersMock) SetVerified(ctx context.Context, id int64, verified bool) error {
	panic("unused")
}

func (m *sellersMock) ExistsByTaxID(ctx context.Context, taxID string) (bool, error) {
	args := m.Called(ctx, taxID)
	return args.Bool(0), args.Error(1)
}

func TestValidateRegister_OK(t *testing.T) {
	users := new(usersMock)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, nil)

	v := NewAuthValidator(users, new(sellersMock))
	err := v.ValidateRegister(context.Background(), "Alice", "a@example.com", "password123")
	assert.NoError(t, err)
}

func TestValidateRegister_ShortPassword(t *testing.T) {
	v := NewAuthValidator(new(usersMock), new(sellersMock))

	err := v.ValidateRegister(context.Background(), "Alice", "a@example.com", "short")
	assert.Equal(t, ErrInvalidInput, err)
}

func TestValidateRegister_BadEmail(t *testing.T) {
	v := NewAuthValidator(new(usersMock), new(sellersMock))

	err := v.ValidateRegister(context.Background(), "Alice", "not-an-email", "password123")
	assert.Equal(t, ErrInvalidInput, err)
}

func TestValidateRegister_DuplicateEmail(t *testing.T) {
	users := new(usersMock)
	users.On("FindByEmail", mock.Anything, "a@example.com").Return(&model.User{ID: 1}, nil)

	v := NewAuthValidator(users, new(sellersMock))
	err := v.ValidateRegister(context.Background(), "Alice", "a@example.com", "password123")
	assert.Equal(t, ErrEmailAlreadyUsed, err)
}

func TestValidateSellerRegister_TaxIDFormat(t *testing.T) {
	users := new(usersMock)
	users.On("FindByEmail", mock.Anything, "s@example.com").Return(nil, nil)
	sellers := new(sellersMock)
	sellers.On("ExistsByTaxID", mock.Anything, mock.Anything).Return(false, nil)
	v := NewAuthValidator(users, sellers)

	cases := []struct {
		taxID string
		ok    bool
	}{
		{"22AAAAA0000A1Z5", true},
		{"22aaaaa0000a1z5", false}, // 小文字
		{"22AAAAA0000A1Z", false},  // 14桁
		{"22AAAAA0000A1Z55", false},
		{"22AAAAA-000A1Z5", false},
		{"", false},
	}
	for _, tc := range cases {
		err := v.ValidateSellerRegister(context.Background(), "Shop Owner", "s@example.com", "password123", "My Shop", tc.taxID)
		if tc.ok {
			assert.NoError(t, err, "taxID=%q", tc.taxID)
		} else {
			assert.Equal(t, ErrInvalidInput, err, "taxID=%q", tc.taxID)
		}
	}
}

func TestValidateSellerRegister_ShopNameRequired(t *testing.T) {
	users := new(usersMock)
	users.On("FindByEmail", mock.Anything, "s@example.com").Return(nil, nil)
	v := NewAuthValidator(users, new(sellersMock))

	err := v.ValidateSellerRegister(context.Background(), "Shop Owner", "s@example.com", "password123", "  ", "22AAAAA0000A1Z5")
	assert.Equal(t, ErrInvalidInput, err)
}

func TestValidateSellerRegister_DuplicateTaxID(t *testing.T) {
	users := new(usersMock)
	users.On("FindByEmail", mock.Anything, "s@example.com").Return(nil, nil)
	sellers := new(sellersMock)
	sellers.On("ExistsByTaxID", mock.Anything, "22AAAAA0000A1Z5").Return(true, nil)
	v := NewAuthValidator(users, sellers)

	err := v.ValidateSellerRegister(context.Background(), "Shop Owner", "s@example.com", "password123", "My Shop", "22AAAAA0000A1Z5")
	assert.Equal(t, ErrTaxIDAlreadyUsed, err)
}

func TestValidateLogin_MissingFields(t *testing.T) {
	v := NewAuthValidator(new(usersMock), new(sellersMock))

	assert.Equal(t, ErrInvalidInput, v.ValidateLogin(context.Background(), "", "password123"))
	assert.Equal(t, ErrInvalidInput, v.ValidateLogin(context.Background(), "a@example.com", ""))
}
