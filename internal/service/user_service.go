package service

import (
	"errors"
	"strings"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 处理用户资料与后台用户管理
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// UpdateProfile 更新用户自己的资料
func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Bio = req.Bio
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ChangePassword 校验旧密码后更新为新密码
func (s *UserService) ChangePassword(userID uint, req ChangePasswordRequest) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return errors.New("旧密码不正确")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Update(user)
}

// ListUsers 后台用户列表，支持按角色筛选和姓名邮箱搜索
func (s *UserService) ListUsers(page, limit int, role, search string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role, search)
}

type AdminUpdateUserRequest struct {
	Name     string         `json:"name"`
	Role     model.UserRole `json:"role"`
	Disabled *bool          `json:"disabled"`
}

// AdminUpdateUser 后台修改用户角色与可用状态
func (s *UserService) AdminUpdateUser(userID uint, req AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetDisabled 封禁或解封用户
func (s *UserService) SetDisabled(userID uint, disabled bool) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	user.Disabled = disabled
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword 重置用户密码，返回一次性明文临时密码
func (s *UserService) ResetPassword(userID uint) (string, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return "", err
	}

	plain := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.Password = string(hashedPassword)
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return plain, nil
}

// DeleteUser 删除用户
func (s *UserService) DeleteUser(userID uint) error {
	if _, err := s.GetProfile(userID); err != nil {
		return err
	}
	return s.UserRepo.Delete(userID)
}
