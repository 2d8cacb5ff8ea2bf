package models

import "time"

// CommentOwner is the author summary embedded in a comment.
type CommentOwner struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Comment is an article comment.
type Comment struct {
	ID        string       `json:"_id"`
	Content   string       `json:"content"`
	Article   string       `json:"article,omitempty"`
	Owner     CommentOwner `json:"owner"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CommentView annotates a comment with the caller's delete permission.
type CommentView struct {
	Comment
	CanDelete bool `json:"canDelete"`
}

// CommentRequest is the payload for posting a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}
