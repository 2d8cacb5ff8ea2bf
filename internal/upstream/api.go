// Package upstream exposes typed calls to the news REST API.
package upstream

import (
	"github.com/noah-isme/newsroom-console/pkg/transport"
)

// API groups the endpoint families used by the console.
type API struct {
	Auth     *AuthAPI
	Articles *ArticlesAPI
	Polls    *PollsAPI
	Comments *CommentsAPI
}

// New binds every endpoint family to the same connection.
func New(doer transport.Doer) *API {
	return &API{
		Auth:     &AuthAPI{doer: doer},
		Articles: &ArticlesAPI{doer: doer},
		Polls:    &PollsAPI{doer: doer},
		Comments: &CommentsAPI{doer: doer},
	}
}
