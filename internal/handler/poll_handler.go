package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/internal/service"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

type pollService interface {
	ActivePoll(ctx context.Context, b *service.Browser) (*models.PollView, error)
	Vote(ctx context.Context, b *service.Browser, pollID, optionID string) (*models.PollView, error)
}

// PollHandler serves the reader poll widget.
type PollHandler struct {
	polls pollService
}

// NewPollHandler constructs a PollHandler.
func NewPollHandler(polls pollService) *PollHandler {
	return &PollHandler{polls: polls}
}

type voteRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

// Active godoc
// @Summary Active poll
// @Description Returns the newest active poll; results replace the form once this browser voted
// @Tags Polls
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /polls/active [get]
func (h *PollHandler) Active(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	view, err := h.polls.ActivePoll(c.Request.Context(), b)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Vote godoc
// @Summary Vote in a poll
// @Tags Polls
// @Accept json
// @Produce json
// @Param id path string true "Poll ID"
// @Param payload body voteRequest true "Chosen option"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /polls/{id}/vote [post]
func (h *PollHandler) Vote(c *gin.Context) {
	b, ok := browserFromContext(c)
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "optionId is required"))
		return
	}
	view, err := h.polls.Vote(c.Request.Context(), b, c.Param("id"), req.OptionID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}
