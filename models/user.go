package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	Role      UserRole  `gorm:"type:enum('Administrator','Editor','Reader');default:'Reader'" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string  `json:"username" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role" binding:"required,userrole"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	role, err := ParseUserRole(input.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrorUnknownEntity, err)
	}
	if err := utils.ValidateUnique[User](ctx, "username", strings.TrimSpace(input.Username), 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: strings.TrimSpace(input.Username),
		Name:     strings.TrimSpace(input.Name),
		Email:    input.Email,
		Password: string(hashed),
		Role:     role,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

// EnsureAdminUser seeds the first Administrator account from ADMIN_USERNAME
// and ADMIN_PASSWORD when the users table is empty. A fresh install has no
// other way to log in.
func EnsureAdminUser(ctx context.Context) error {
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return errors.New("users table is empty and ADMIN_USERNAME/ADMIN_PASSWORD are not set")
	}

	_, err := CreateUser(ctx, &NewUser{
		Username: username,
		Name:     "Administrator",
		Password: password,
		Role:     string(RoleAdministrator),
	})
	return err
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func Login(ctx context.Context, username, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		return nil, errors.New("invalid username or password")
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("account is disabled")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Role:  string(user.Role),
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", utils.ErrorUnknownEntity, id)
	}
	user.PrepareGive()
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("%w: user %q", utils.ErrorUnknownEntity, username)
	}
	return &user, nil
}

func ListUsers(ctx context.Context) ([]*User, error) {
	users, err := utils.FetchAllModels[User](ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PrepareGive()
	}
	return users, nil
}

type UserUpdate struct {
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     string  `json:"role" binding:"required,userrole"`
	IsActive *bool   `json:"is_active"`
}

func UpdateUser(ctx context.Context, id int, input *UserUpdate) (*User, error) {
	role, err := ParseUserRole(input.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrorUnknownEntity, err)
	}

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", utils.ErrorUnknownEntity, id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"Name":     strings.TrimSpace(input.Name),
		"Email":    input.Email,
		"Role":     role,
		"IsActive": input.IsActive,
	}).Error
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}
