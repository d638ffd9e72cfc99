package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 住所帳のCRUD。
type AddressUsecase struct {
	addressRepo repo.AddressRepository
}

// DI
func NewAddressUsecase(addressRepo repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addressRepo: addressRepo}
}

type AddressInput struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

func validateAddressInput(in AddressInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Line1) == "" {
		return NewHTTPError(http.StatusBadRequest, "line1 is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "city is required")
	}
	if strings.TrimSpace(in.State) == "" {
		return NewHTTPError(http.StatusBadRequest, "state is required")
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "postal_code is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		return NewHTTPError(http.StatusBadRequest, "country is required")
	}
	return nil
}

// 新規作成。is_default=trueなら他の住所のデフォルトを外す。
func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAddressInput(in); err != nil {
		return model.Address{}, err
	}

	created, err := u.addressRepo.Create(ctx, model.Address{
		UserID:     userID,
		Name:       in.Name,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
	})
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.IsDefault {
		if err := u.addressRepo.SetDefault(ctx, userID, created.ID); err != nil {
			return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created.IsDefault = true
	}
	return created, nil
}

// 一覧
func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 更新。他人の住所は404。
func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateAddressInput(in); err != nil {
		return model.Address{}, err
	}

	if err := u.mustOwn(ctx, userID, addressID); err != nil {
		return model.Address{}, err
	}

	current, err := u.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	current.Name = in.Name
	current.Line1 = in.Line1
	current.Line2 = in.Line2
	current.City = in.City
	current.State = in.State
	current.PostalCode = in.PostalCode
	current.Country = in.Country
	current.Phone = in.Phone
	if err := u.addressRepo.Update(ctx, current); err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.IsDefault && !current.IsDefault {
		if err := u.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
			return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		current.IsDefault = true
	}
	return current, nil
}

// デフォルト住所の切り替え
func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.mustOwn(ctx, userID, addressID); err != nil {
		return err
	}
	if err := u.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 削除
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.mustOwn(ctx, userID, addressID); err != nil {
		return err
	}
	if err := u.addressRepo.Delete(ctx, addressID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AddressUsecase) mustOwn(ctx context.Context, userID int64, addressID int64) error {
	owned, err := u.addressRepo.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}
