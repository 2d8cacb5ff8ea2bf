package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/newsroom-console/internal/models"
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// PollsAPI wraps the public /polls endpoints.
type PollsAPI struct {
	doer transport.Doer
}

// Active returns up to limit active polls, newest first.
func (p *PollsAPI) Active(ctx context.Context, limit int) ([]models.Poll, error) {
	if limit <= 0 {
		limit = 1
	}
	var polls []models.Poll
	err := p.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/polls/active",
		Query:  url.Values{"limit": []string{strconv.Itoa(limit)}},
	}, &polls)
	if err != nil {
		return nil, err
	}
	return polls, nil
}

type voteBody struct {
	OptionID string `json:"optionId"`
}

// Vote casts a vote and returns the recomputed results.
func (p *PollsAPI) Vote(ctx context.Context, pollID, optionID string) (*models.VoteResult, error) {
	var result models.VoteResult
	err := p.doer.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Path:     "/polls/" + url.PathEscape(pollID) + "/vote",
		Body:     voteBody{OptionID: optionID},
		Fallback: "Failed to submit vote",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
