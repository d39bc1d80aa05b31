package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avoronov/todoapi/internal/logging"
	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
	"github.com/avoronov/todoapi/internal/models"
	"github.com/avoronov/todoapi/internal/mykafka"
	"github.com/avoronov/todoapi/internal/service/search"
)

type TodoHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type todoRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted bool       `json:"is_completed"`
}

func (h *TodoHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, "todo_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *TodoHandler) index(c echo.Context, todo *models.Todo) {
	if h.ES == nil {
		return
	}
	if err := search.IndexTodo(c.Request().Context(), h.ES, h.Index, todo); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index failed", "todo_id", todo.ID, "error", err)
	}
}

func (h *TodoHandler) unindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	if err := search.DeleteTodo(c.Request().Context(), h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete failed", "todo_id", id, "error", err)
	}
}

func (h *TodoHandler) GetTodos(c echo.Context) error {
	ctx := c.Request().Context()
	userID := authmw.UserID(c)

	var todos []models.Todo
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		logging.FromContext(ctx).Error("get_todos_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}
	if len(todos) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_create")
	userID := authmw.UserID(c)

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required!")
	}

	todo := models.Todo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	}
	if err := h.DB.WithContext(ctx).Create(&todo).Error; err != nil {
		l.Error("create_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	h.index(c, &todo)
	h.publish(c, fmt.Sprint(userID), map[string]interface{}{
		"type":    "todo_created",
		"user_id": userID,
		"todo_id": todo.ID,
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "Successfully added task!"})
}

func (h *TodoHandler) GetTodo(c echo.Context) error {
	ctx := c.Request().Context()
	userID := authmw.UserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var todo models.Todo
	if err := h.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		logging.FromContext(ctx).Error("get_todo_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) UpdateTodo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_update")
	userID := authmw.UserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var todo models.Todo
	if err := h.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		l.Error("update_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	todo.Title = req.Title
	todo.Description = req.Description
	todo.Priority = req.Priority
	todo.Deadline = req.Deadline
	todo.IsCompleted = req.IsCompleted
	if err := h.DB.WithContext(ctx).Save(&todo).Error; err != nil {
		l.Error("update_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	h.index(c, &todo)
	h.publish(c, fmt.Sprint(userID), map[string]interface{}{
		"type":    "todo_updated",
		"user_id": userID,
		"todo_id": todo.ID,
	})

	return c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_delete")
	userID := authmw.UserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var todo models.Todo
	if err := h.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		l.Error("delete_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	if err := h.DB.WithContext(ctx).Delete(&todo).Error; err != nil {
		l.Error("delete_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	h.unindex(c, todo.ID)
	h.publish(c, fmt.Sprint(userID), map[string]interface{}{
		"type":    "todo_deleted",
		"user_id": userID,
		"todo_id": todo.ID,
	})

	return c.JSON(http.StatusOK, todo)
}
