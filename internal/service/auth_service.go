package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/model"
	"branchstock/internal/repository"
	"branchstock/pkg/jwt"
	"branchstock/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Name     string     `json:"name" validate:"required"`
	Role     model.Role `json:"role" validate:"required,oneof=admin employee"`
	Location *uuid.UUID `json:"location_id"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ErrInvalidCredentials deliberately covers both the unknown-email and the
// wrong-password case so login failures don't leak which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Login(req *LoginRequest) (*LoginResponse, error)
	Register(actor *model.User, req *RegisterRequest) (*model.User, error)
	ChangePassword(actor *model.User, req *ChangePasswordRequest) error
	ListUsers() ([]model.UserResponse, error)
}

type authService struct {
	users       repository.UserRepository
	expiryHours int
	log         *zap.Logger
}

func NewAuthService(users repository.UserRepository, expiryHours int, log *zap.Logger) AuthService {
	return &authService{users: users, expiryHours: expiryHours, log: log}
}

func (s *authService) Login(req *LoginRequest) (*LoginResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}

	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(req.Password) {
		s.log.Info("failed login attempt", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Name, string(user.Role), user.LocationID, s.expiryHours)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) Register(actor *model.User, req *RegisterRequest) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, err := s.users.FindByEmail(req.Email); err == nil {
		return nil, badRequest("a user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		LocationID: req.Location,
		IsActive:   true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	user.CreatedBy = actor.ID.String()
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.log.Info("user registered",
		zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *authService) ChangePassword(actor *model.User, req *ChangePasswordRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return badRequest(validator.FirstError(errs))
	}
	if !actor.CheckPassword(req.CurrentPassword) {
		return badRequest("current password is incorrect")
	}

	hashed := &model.User{}
	if err := hashed.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return s.users.UpdatePassword(actor.ID, hashed.Password)
}

func (s *authService) ListUsers() ([]model.UserResponse, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, nil
}
