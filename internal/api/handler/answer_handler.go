package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/odooqa/qa-system/internal/api/metrics"
	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// AnswerHandler handles HTTP requests for answers and votes.
type AnswerHandler struct {
	service ports.AnswerService
}

func NewAnswerHandler(service ports.AnswerService) *AnswerHandler {
	return &AnswerHandler{service: service}
}

// List handles GET /api/questions/:id/answers.
//
// @Summary      List the answers of a question, ranked
// @Tags         answers
// @Produce      json
// @Param        id   path      string  true  "Question id"
// @Success      200  {array}   domain.Answer
// @Failure      404  {object}  errorResponse
// @Router       /api/questions/{id}/answers [get]
func (h *AnswerHandler) List(c echo.Context) error {
	answers, err := h.service.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, answers)
}

// Create handles POST /api/questions/:id/answers.
//
// @Summary      Answer a question
// @Tags         answers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Question id"
// @Param        body  body      createAnswerRequest  true  "Answer"
// @Success      201   {object}  domain.Answer
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/questions/{id}/answers [post]
func (h *AnswerHandler) Create(c echo.Context) error {
	who, err := requireActor(c)
	if err != nil {
		return err
	}

	var req createAnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	a, err := h.service.Create(c.Request().Context(), who, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	metrics.AnswersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, a)
}

// Vote handles POST /api/answers/:id/vote. Voting the same direction twice
// retracts the vote.
//
// @Summary      Vote on an answer
// @Tags         answers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Answer id"
// @Param        body  body      voteRequest  true  "Vote"
// @Success      200   {object}  domain.VoteResult
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/answers/{id}/vote [post]
func (h *AnswerHandler) Vote(c echo.Context) error {
	who, err := requireActor(c)
	if err != nil {
		return err
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	dir := domain.VoteDirection(req.VoteType)

	res, err := h.service.Vote(c.Request().Context(), who, domain.VoteIntent{AnswerID: c.Param("id"), Direction: dir})
	metrics.VotesTotal.WithLabelValues(string(dir), voteOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case domain.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
