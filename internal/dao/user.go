package dao

import (
	"time"

	"tracelens/internal/model"
)

type UserSpec struct {
	Id          int    `json:"id"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	IsAdmin     bool   `json:"isAdmin"`
	CreatedTime string `json:"createdTime"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserSpec `json:"user"`
}

type ListUsersRequest struct {
	Start int `form:"start"`
	Limit int `form:"limit"`
}

type ListUsersResponse struct {
	Total int        `json:"total"`
	Items []UserSpec `json:"items"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,password"`
	Nickname string `json:"nickname" binding:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type CreateUserResponse struct {
	Id int `json:"id"`
}

func ToUserSpec(u *model.User) *UserSpec {
	return &UserSpec{
		Id:          u.Id,
		Username:    u.Username,
		Nickname:    u.Nickname,
		IsAdmin:     u.IsAdmin,
		CreatedTime: u.CreatedTime.Format(time.RFC3339),
	}
}
