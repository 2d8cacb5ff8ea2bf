package models

// Audit actions recorded for state-changing console operations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionImportSubmit   = "IMPORT_SUBMIT"
	AuditActionCommentDelete  = "COMMENT_DELETE"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
)

// AuditEntry is written to the structured log after a mutating request.
type AuditEntry struct {
	Action     string
	Resource   string
	ResourceID string
	UserID     string
	ContextID  string
	Status     int
	IPAddress  string
	UserAgent  string
}
