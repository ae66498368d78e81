package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cms_backend/internal/handlers"
	authmw "github.com/Skotchmaster/cms_backend/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	Auth           *authmw.Middleware
	AuthHandler    *handlers.AuthHandler
	ContentHandler *handlers.ContentHandler
	UserHandler    *handlers.UserHandler
	RoleHandler    *handlers.RoleHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/login", d.AuthHandler.Login)
	e.POST("/token", d.AuthHandler.Token)
	e.POST("/refresh", d.AuthHandler.Refresh)
	e.POST("/logout", d.AuthHandler.Logout)

	content := e.Group("/content", d.Auth.RequireLogin)
	content.GET("", d.ContentHandler.GetContent)
	content.GET("/search", d.ContentHandler.Search)
	content.GET("/:id", d.ContentHandler.GetContentByID)
	content.POST("", d.ContentHandler.CreateContent)
	content.PUT("/:id", d.ContentHandler.UpdateContent)
	content.PATCH("/:id/restore", d.ContentHandler.RestoreContent)
	content.DELETE("/:id", d.ContentHandler.DeleteContent)
	content.DELETE("/:id/permanently", d.ContentHandler.DeleteContentPermanently)

	users := e.Group("/users", d.Auth.RequireLogin, d.Auth.RequireAdmin)
	users.GET("", d.UserHandler.GetUsers)
	users.GET("/:id", d.UserHandler.GetUser)
	users.POST("", d.UserHandler.CreateUser)
	users.PUT("/:id", d.UserHandler.UpdateUser)
	users.PATCH("/:id/restore", d.UserHandler.RestoreUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)
	users.DELETE("/:id/permanently", d.UserHandler.DeleteUserPermanently)

	roles := e.Group("/roles", d.Auth.RequireLogin, d.Auth.RequireAdmin)
	roles.GET("", d.RoleHandler.GetRoles)
	roles.GET("/:id", d.RoleHandler.GetRole)
	roles.POST("", d.RoleHandler.CreateRole)
	roles.PUT("/:id", d.RoleHandler.UpdateRole)
}
