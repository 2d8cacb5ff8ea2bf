package models

// Role is the closed set of roles the news API assigns.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEditor   Role = "editor"
	RoleReporter Role = "reporter"
	RoleUser     Role = "user"
)

// StaffRoles may enter the admin area.
var StaffRoles = []Role{RoleAdmin, RoleEditor, RoleReporter}

// IsStaff reports whether the role belongs to StaffRoles.
func (r Role) IsStaff() bool {
	for _, staff := range StaffRoles {
		if r == staff {
			return true
		}
	}
	return false
}

// User is the identity summary returned by the news API.
type User struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar,omitempty"`
	CoverImage string `json:"coverImage,omitempty"`
	Role       Role   `json:"role"`
	IsBlocked  bool   `json:"isBlocked,omitempty"`
}

// UserPatch is a partial identity update. Nil fields are left untouched.
type UserPatch struct {
	FullName   *string `json:"fullName,omitempty"`
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// PatchFrom builds a patch carrying every non-empty profile field of u.
func PatchFrom(u User) UserPatch {
	var p UserPatch
	set := func(dst **string, v string) {
		if v != "" {
			value := v
			*dst = &value
		}
	}
	set(&p.FullName, u.FullName)
	set(&p.Username, u.Username)
	set(&p.Email, u.Email)
	set(&p.Avatar, u.Avatar)
	set(&p.CoverImage, u.CoverImage)
	return p
}

// Apply merges the patch into u in place.
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.CoverImage != nil {
		u.CoverImage = *p.CoverImage
	}
}
