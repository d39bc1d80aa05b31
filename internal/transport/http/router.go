package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avoronov/todoapi/internal/handlers"
	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
)

type Deps struct {
	DB            *gorm.DB
	Auth          *authmw.Auth
	AuthHandler   *handlers.AuthHandler
	TodoHandler   *handlers.TodoHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	users := e.Group("/api/users")

	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	// Refresh is deliberately not behind RequireLogin: it exists to
	// recover from an expired access token.
	users.POST("/refresh-token", d.AuthHandler.RefreshToken)
	users.POST("/logout", d.AuthHandler.LogOut, d.Auth.RequireLogin)
	users.GET("", d.AuthHandler.GetAllUsers, d.Auth.RequireLogin, d.Auth.AdminOnly)
	users.GET("/profile", d.AuthHandler.Profile, d.Auth.RequireLogin)
	users.DELETE("/delete", d.AuthHandler.DeleteUser, d.Auth.RequireLogin)

	todos := e.Group("/api/todos", d.Auth.RequireLogin)

	todos.GET("", d.TodoHandler.GetTodos)
	todos.POST("", d.TodoHandler.CreateTodo)
	todos.GET("/search", d.SearchHandler.Search)
	todos.GET("/:id", d.TodoHandler.GetTodo)
	todos.PUT("/:id", d.TodoHandler.UpdateTodo)
	todos.DELETE("/:id", d.TodoHandler.DeleteTodo)
}
