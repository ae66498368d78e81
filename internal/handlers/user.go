package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/hash"
	"github.com/Skotchmaster/cms_backend/internal/logging"
	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/mykafka"
	"github.com/Skotchmaster/cms_backend/internal/repository"
	"github.com/Skotchmaster/cms_backend/internal/response"
)

// UserHandler serves the admin-gated user management routes. The admin check
// itself lives in the middleware chain.
type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := repository.GetUsers(h.DB)
	if err != nil {
		return response.InternalServerError(c)
	}
	return response.OK(c, "Users retrieved successfully", users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}
	return response.OK(c, "User retrieved successfully", user)
}

type createUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     uint   `json:"role"`
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Bad Request")
	}
	if req.Username == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "name, username and password are required")
	}

	role, err := repository.GetRoleByID(h.DB, req.Role)
	if err != nil {
		return response.InternalServerError(c)
	}
	if role == nil {
		return response.BadRequest(c, "Role not found")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c)
	}

	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: pwHash,
		RoleID:       role.ID,
	}
	if err := repository.CreateUser(h.DB, &user); err != nil {
		return response.BadRequest(c, "Username already taken")
	}

	h.publish(c, map[string]any{
		"type":     "user_created",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, "User created successfully", nil)
}

type updateUserRequest struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	Role        *uint   `json:"role"`
	OldPassword *string `json:"old_password"`
	NewPassword *string `json:"new_password"`
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	user, err := h.userFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}
	if user.DeletedAt != nil {
		return response.BadRequest(c, "User is deleted")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Bad Request")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Role != nil {
		role, err := repository.GetRoleByID(h.DB, *req.Role)
		if err != nil {
			return response.InternalServerError(c)
		}
		if role == nil {
			return response.BadRequest(c, "Role not found")
		}
		user.RoleID = role.ID
		user.Role = *role
	}
	if req.NewPassword != nil {
		if req.OldPassword == nil {
			return response.BadRequest(c, "Old password is required to change password.")
		}
		if !hash.CheckPassword(user.PasswordHash, *req.OldPassword) {
			return response.BadRequest(c, "Old password is incorrect.")
		}
		pwHash, err := hash.HashPassword(*req.NewPassword)
		if err != nil {
			return response.InternalServerError(c)
		}
		user.PasswordHash = pwHash
	}

	if err := repository.UpdateUser(h.DB, user); err != nil {
		return response.InternalServerError(c)
	}

	return response.OK(c, "User updated successfully", nil)
}

func (h *UserHandler) RestoreUser(c echo.Context) error {
	user, err := h.userFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}

	if err := repository.RestoreUser(h.DB, user); err != nil {
		return response.InternalServerError(c)
	}

	return response.OK(c, "User restored successfully", nil)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	user, err := h.userFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}

	if err := repository.SoftDeleteUser(h.DB, user); err != nil {
		return response.InternalServerError(c)
	}

	h.publish(c, map[string]any{
		"type":     "user_deleted",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, "User deleted successfully", nil)
}

func (h *UserHandler) DeleteUserPermanently(c echo.Context) error {
	user, err := h.userFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}

	if err := repository.DeleteUser(h.DB, user); err != nil {
		return response.InternalServerError(c)
	}

	h.publish(c, map[string]any{
		"type":     "user_deleted_permanently",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return response.OK(c, "User deleted permanently", nil)
}

func (h *UserHandler) userFromParam(c echo.Context) (*models.User, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return nil, nil
	}
	return repository.GetUserByID(h.DB, uint(id))
}

func (h *UserHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}
