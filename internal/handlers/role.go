package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/models"
	"github.com/Skotchmaster/cms_backend/internal/repository"
	"github.com/Skotchmaster/cms_backend/internal/response"
)

type RoleHandler struct {
	DB *gorm.DB
}

func (h *RoleHandler) GetRoles(c echo.Context) error {
	roles, err := repository.GetRoles(h.DB)
	if err != nil {
		return response.InternalServerError(c)
	}
	return response.OK(c, "Roles retrieved successfully", roles)
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	role, err := h.roleFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if role == nil {
		return response.NotFound(c, "Role not found")
	}
	return response.OK(c, "Role retrieved successfully", role)
}

type roleRequest struct {
	Name string `json:"name"`
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Bad Request")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	exists, err := repository.RoleExists(h.DB, req.Name)
	if err != nil {
		return response.InternalServerError(c)
	}
	if exists {
		return response.BadRequest(c, "Role name already exists")
	}

	role := models.Role{Name: req.Name}
	if err := repository.CreateRole(h.DB, &role); err != nil {
		return response.InternalServerError(c)
	}

	return response.OK(c, "Role created successfully", role)
}

func (h *RoleHandler) UpdateRole(c echo.Context) error {
	role, err := h.roleFromParam(c)
	if err != nil {
		return response.InternalServerError(c)
	}
	if role == nil {
		return response.NotFound(c, "Role not found")
	}

	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Bad Request")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	if req.Name != role.Name {
		exists, err := repository.RoleExists(h.DB, req.Name)
		if err != nil {
			return response.InternalServerError(c)
		}
		if exists {
			return response.BadRequest(c, "Role name already exists")
		}
	}

	role.Name = req.Name
	if err := repository.UpdateRole(h.DB, role); err != nil {
		return response.InternalServerError(c)
	}

	return response.OK(c, "Role updated successfully", role)
}

func (h *RoleHandler) roleFromParam(c echo.Context) (*models.Role, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return nil, nil
	}
	return repository.GetRoleByID(h.DB, uint(id))
}
