package models

// SessionState is a read-only snapshot of one browser context's session.
type SessionState struct {
	User    *User `json:"user"`
	Loading bool  `json:"loading"`
}

// IsAuthenticated reports whether a session is present.
func (s SessionState) IsAuthenticated() bool { return s.User != nil }

// IsAdmin reports whether the session role is admin.
func (s SessionState) IsAdmin() bool { return s.User != nil && s.User.Role == RoleAdmin }

// IsEditor reports whether the session role is editor.
func (s SessionState) IsEditor() bool { return s.User != nil && s.User.Role == RoleEditor }

// IsStaff reports whether the session may enter the admin area.
func (s SessionState) IsStaff() bool { return s.User != nil && s.User.Role.IsStaff() }

// Requirement is the permission a view declares.
type Requirement string

const (
	RequirePublic        Requirement = "public"
	RequireAuthenticated Requirement = "authenticated"
	RequireStaff         Requirement = "staff"
)

// Decision is the outcome of evaluating a Requirement against a session.
type Decision string

const (
	DecisionPending               Decision = "pending"
	DecisionDeniedUnauthenticated Decision = "denied_unauthenticated"
	DecisionDeniedForbidden       Decision = "denied_forbidden"
	DecisionGranted               Decision = "granted"
)

// Notice is a user-visible notification emitted by an operation.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)
