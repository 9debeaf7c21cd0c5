package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/odooqa/qa-system/internal/api/metrics"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// QuestionHandler handles HTTP requests for questions.
type QuestionHandler struct {
	service ports.QuestionService
}

func NewQuestionHandler(service ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// List handles GET /api/questions.
//
// @Summary      List questions, newest first
// @Tags         questions
// @Produce      json
// @Param        tag    query     string  false  "Only questions with this tag"
// @Param        page   query     int     false  "Page number (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {array}   domain.Question
// @Failure      400    {object}  errorResponse
// @Router       /api/questions [get]
func (h *QuestionHandler) List(c echo.Context) error {
	filter := ports.ListQuestionsFilter{Tag: c.QueryParam("tag")}

	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return err
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		return err
	}

	questions, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, questions)
}

// Get handles GET /api/questions/:id.
//
// @Summary      Get a question
// @Tags         questions
// @Produce      json
// @Param        id   path      string  true  "Question id"
// @Success      200  {object}  domain.Question
// @Failure      404  {object}  errorResponse
// @Router       /api/questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	q, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// Create handles POST /api/questions. Without a token the question is
// stored anonymously.
//
// @Summary      Ask a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createQuestionRequest  true  "Question"
// @Success      201   {object}  domain.Question
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/questions [post]
func (h *QuestionHandler) Create(c echo.Context) error {
	var req createQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	author := actor(c)
	q, err := h.service.Create(c.Request().Context(), ports.CreateQuestionInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Author:      author,
	})
	if err != nil {
		return err
	}

	kind := "member"
	if author == nil {
		kind = "anonymous"
	}
	metrics.QuestionsCreatedTotal.WithLabelValues(kind).Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/api/questions/"+q.ID)
	return c.JSON(http.StatusCreated, q)
}

// Delete handles DELETE /api/questions/:id.
//
// @Summary      Delete a question
// @Tags         questions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Question id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	who, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), who, c.Param("id")); err != nil {
		return err
	}
	metrics.QuestionsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "question deleted"})
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
