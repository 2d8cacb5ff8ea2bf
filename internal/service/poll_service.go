package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// Ledger records which polls this browser already voted in. Receipts are a
// convenience only; the news API enforces one vote per voter and a cleared
// browser may vote again.
type Ledger struct {
	scope Scope
}

// NewLedger keeps receipts in the local scope of storage.
func NewLedger(storage *BrowserStorage) *Ledger {
	return &Ledger{scope: storage.Local()}
}

// HasVoted reports whether a receipt exists for pollID.
func (l *Ledger) HasVoted(ctx context.Context, pollID string) (bool, error) {
	var marker bool
	return l.scope.Get(ctx, VotedKeyPrefix+pollID, &marker)
}

// RecordVote writes the receipt for pollID.
func (l *Ledger) RecordVote(ctx context.Context, pollID string) error {
	return l.scope.Set(ctx, VotedKeyPrefix+pollID, true)
}

// Percentage rounds votes/total*100 half up; zero when total is zero.
func Percentage(votes, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(votes)/float64(total)*100 + 0.5))
}

// ComputeResults derives results from a poll's option counts.
func ComputeResults(poll models.Poll) ([]models.PollResult, int) {
	total := 0
	for _, option := range poll.Options {
		total += option.Votes
	}
	results := make([]models.PollResult, len(poll.Options))
	for i, option := range poll.Options {
		results[i] = models.PollResult{
			ID:         option.ID,
			Text:       option.Text,
			Votes:      option.Votes,
			Percentage: Percentage(option.Votes, total),
		}
	}
	return results, total
}

// PollService serves the reader poll widget.
type PollService struct {
	activeLimit int
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewPollService constructs a PollService.
func NewPollService(activeLimit int, metrics *MetricsService, logger *zap.Logger) *PollService {
	if activeLimit <= 0 {
		activeLimit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollService{activeLimit: activeLimit, metrics: metrics, logger: logger}
}

// ActivePoll returns the newest active poll, or nil when none is running.
// When this browser holds a receipt the view carries results computed from
// the option counts instead of the voting form.
func (s *PollService) ActivePoll(ctx context.Context, b *Browser) (*models.PollView, error) {
	polls, err := b.Polls.Active(ctx, s.activeLimit)
	if err != nil {
		return nil, upstreamFailure(err, "Failed to load poll")
	}
	if len(polls) == 0 {
		return nil, nil
	}
	poll := polls[0]
	view := &models.PollView{Poll: poll}

	voted, err := NewLedger(b.Storage).HasVoted(ctx, poll.ID)
	if err != nil {
		s.logger.Warn("read vote receipt failed", zap.String("poll_id", poll.ID), zap.Error(err))
	}
	if voted {
		view.HasVoted = true
		view.Results, view.TotalVotes = ComputeResults(poll)
	}
	return view, nil
}

// Vote casts a vote unless this browser already holds a receipt for the
// poll. The receipt is written only after the news API accepted the vote.
func (s *PollService) Vote(ctx context.Context, b *Browser, pollID, optionID string) (*models.PollView, error) {
	if pollID == "" || optionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "poll and option are required")
	}
	ledger := NewLedger(b.Storage)
	voted, err := ledger.HasVoted(ctx, pollID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read vote receipt")
	}
	if voted {
		return nil, appErrors.ErrAlreadyVoted
	}

	result, err := b.Polls.Vote(ctx, pollID, optionID)
	if err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyVoted, appErrors.FromError(err).Message)
		}
		return nil, upstreamFailure(err, "Failed to submit vote")
	}
	if err := ledger.RecordVote(ctx, pollID); err != nil {
		s.logger.Warn("write vote receipt failed", zap.String("poll_id", pollID), zap.Error(err))
	}
	s.metrics.RecordVote()
	notifySuccess(b.Notices, "Your vote has been recorded!")

	return &models.PollView{
		Poll:       models.Poll{ID: pollID},
		HasVoted:   true,
		Results:    result.Results,
		TotalVotes: result.TotalVotes,
	}, nil
}
