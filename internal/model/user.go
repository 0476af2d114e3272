package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User is an account that can authenticate against the API. Employees
// additionally carry an Employee row with branch and inventory grants.
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'employee';index" json:"role"`
	LocationID   *uuid.UUID `gorm:"type:uuid;index" json:"location_id,omitempty"`
	Location     *Location  `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	ProfileImage string     `gorm:"type:varchar(512)" json:"profile_image,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	IsActive     bool       `json:"is_active"`
	ProfileImage string     `json:"profile_image,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		LocationID:   u.LocationID,
		Location:     u.Location,
		IsActive:     u.IsActive,
		ProfileImage: u.ProfileImage,
	}
}
