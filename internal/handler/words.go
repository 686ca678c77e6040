package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/middleware"
	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/service"
)

// WordHandler serves the principal's vocabulary.  Every call passes the
// principal from the context down to the service; ids in the path are
// never trusted on their own.
type WordHandler struct {
	Words   *service.WordService
	Timeout time.Duration
	Log     *zap.Logger
}

func NewWordHandler(w *service.WordService, timeout time.Duration, log *zap.Logger) *WordHandler {
	return &WordHandler{Words: w, Timeout: timeout, Log: log}
}

// List: GET /api/words?skip=&limit=&language=
func (h *WordHandler) List(c echo.Context) error {
	f := model.WordFilter{Language: c.QueryParam("language")}
	var err error
	if f.Skip, err = intParam(c, "skip"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "skip must be an integer"})
	}
	if f.Limit, err = intParam(c, "limit"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be an integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	words, err := h.Words.List(ctx, middleware.Principal(c), f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := make([]wordResp, 0, len(words))
	for _, w := range words {
		out = append(out, toWord(w))
	}
	return c.JSON(http.StatusOK, out)
}

// Get: GET /api/words/:id
func (h *WordHandler) Get(c echo.Context) error {
	id, ok := wordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	w, err := h.Words.Get(ctx, middleware.Principal(c), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toWord(w))
}

// Create: POST /api/words
func (h *WordHandler) Create(c echo.Context) error {
	var req wordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	w, err := h.Words.Create(ctx, middleware.Principal(c), req.input())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toWord(w))
}

// Update: PUT /api/words/:id
func (h *WordHandler) Update(c echo.Context) error {
	id, ok := wordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}
	var req wordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	w, err := h.Words.Update(ctx, middleware.Principal(c), id, req.input())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toWord(w))
}

// Delete: DELETE /api/words/:id
func (h *WordHandler) Delete(c echo.Context) error {
	id, ok := wordID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid word id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.Words.Delete(ctx, middleware.Principal(c), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats: GET /api/stats
func (h *WordHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	st, err := h.Words.Stats(ctx, middleware.Principal(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	langs := st.Languages
	if langs == nil {
		langs = []string{}
	}
	return c.JSON(http.StatusOK, statsResp{TotalWords: st.TotalWords, Languages: langs, LanguageCount: st.LanguageCount})
}

// wordID parses the :id path parameter.  Ids are limited to 63 bits, the
// range database/sql accepts for an integer argument.
func wordID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	return id, err == nil && id > 0
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
