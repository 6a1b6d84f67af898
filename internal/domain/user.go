package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleOperator UserRole = "operator"
	RoleViewer   UserRole = "viewer"
)

var roleRank = map[UserRole]int{
	RoleViewer:   0,
	RoleOperator: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// AtLeast reports whether the role grants at least the permissions of min.
func (r UserRole) AtLeast(min UserRole) bool {
	return roleRank[r] >= roleRank[min]
}

func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;index;default:'operator'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
