package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	authmw "github.com/avoronov/todoapi/internal/middleware/auth"
	"github.com/avoronov/todoapi/internal/service/search"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

const (
	defaultSearchSize = 10
	maxSearchSize     = 100
)

func searchWindow(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	return (page - 1) * size, size
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := searchWindow(page, size)

	ctx := c.Request().Context()

	total, todos, err := search.Search(ctx, h.ES, h.Index, q, authmw.UserID(c), from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error!")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "todos": todos})
}
