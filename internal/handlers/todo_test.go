package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/todoapi/internal/models"
)

func (a *testApp) createTodo(t *testing.T, token, title string) models.Todo {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/api/todos", map[string]interface{}{
		"title":       title,
		"description": "desc of " + title,
		"priority":    "high",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var todo models.Todo
	require.NoError(t, a.db.Where("title = ?", title).First(&todo).Error)
	return todo
}

func TestTodosRequireAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/todos", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateTodoRequiresTitle(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	rec := app.request(t, http.MethodPost, "/api/todos", map[string]string{
		"description": "no title",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")
}

func TestTodoCRUDLifecycle(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	// Empty list comes back as 204.
	rec := app.request(t, http.MethodGet, "/api/todos", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	todo := app.createTodo(t, token, "buy milk")

	rec = app.request(t, http.MethodGet, "/api/todos", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "buy milk", list[0].Title)

	rec = app.request(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", todo.ID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(t, http.MethodPut, fmt.Sprintf("/api/todos/%d", todo.ID), map[string]interface{}{
		"title":        "buy milk",
		"description":  "two bottles",
		"priority":     "low",
		"is_completed": true,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "two bottles", updated.Description)

	rec = app.request(t, http.MethodDelete, fmt.Sprintf("/api/todos/%d", todo.ID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/todos", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTodoOwnershipIsolation(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice")
	app.register(t, "bob")
	aliceToken, _ := app.login(t, "alice", "secretpass123")
	bobToken, _ := app.login(t, "bob", "secretpass123")

	todo := app.createTodo(t, aliceToken, "alice private task")

	// Bob sees nothing of Alice's.
	rec := app.request(t, http.MethodGet, "/api/todos", nil, bobToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", todo.ID), nil, bobToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(t, http.MethodDelete, fmt.Sprintf("/api/todos/%d", todo.ID), nil, bobToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Alice's row survived Bob's delete attempt.
	rec = app.request(t, http.MethodGet, fmt.Sprintf("/api/todos/%d", todo.ID), nil, aliceToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateMissingTodo(t *testing.T) {
	app := newTestApp(t)

	app.register(t, "alice")
	token, _ := app.login(t, "alice", "secretpass123")

	rec := app.request(t, http.MethodPut, "/api/todos/9999", map[string]string{
		"title": "ghost",
	}, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
