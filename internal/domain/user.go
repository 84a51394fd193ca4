package domain

import (
	"time"
)

type Role string

const (
	RoleDentist   Role = "牙医"
	RoleFrontDesk Role = "前台"
	RoleDirector  Role = "院长"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
