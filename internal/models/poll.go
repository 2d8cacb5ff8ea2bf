package models

// PollOption is one answer of a poll with its running count.
type PollOption struct {
	ID    string `json:"_id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is an active reader poll.
type Poll struct {
	ID       string       `json:"_id"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
}

// PollResult is an option with its display percentage.
type PollResult struct {
	ID         string `json:"_id"`
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// VoteResult is returned by the vote endpoint.
type VoteResult struct {
	Results    []PollResult `json:"results"`
	TotalVotes int          `json:"totalVotes"`
}

// PollView is either the voting form (Results nil) or the results.
type PollView struct {
	Poll       Poll         `json:"poll"`
	HasVoted   bool         `json:"hasVoted"`
	Results    []PollResult `json:"results,omitempty"`
	TotalVotes int          `json:"totalVotes"`
}
