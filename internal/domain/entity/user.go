package entity

import "time"

// Role is the closed set of user roles. Workflow guards evaluate role
// capabilities, not role names, so the capability methods below are the only
// place role membership is interpreted.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCoordinator  Role = "COORDINATOR"
	RoleSocialWorker Role = "SOCIAL_WORKER"
	RoleViewer       Role = "VIEWER"
)

var validRoles = map[Role]bool{
	RoleAdmin:        true,
	RoleCoordinator:  true,
	RoleSocialWorker: true,
	RoleViewer:       true,
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User is the acting identity resolved by the identity collaborator. Every
// workflow action receives the actor explicitly; nothing reads ambient session
// state.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Role       Role      `json:"role"`
	SecretHash string    `json:"-"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAdmin reports admin capability
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCoordinator reports coordinator capability
func (u *User) IsCoordinator() bool {
	return u.Role == RoleCoordinator
}

// IsSocialWorker reports social-worker capability
func (u *User) IsSocialWorker() bool {
	return u.Role == RoleSocialWorker
}

// CanSubmit reports whether the user may submit or resubmit a request
func (u *User) CanSubmit() bool {
	return u.IsSocialWorker() || u.IsAdmin()
}

// CanReview reports whether the user may review, reject, or request documents
func (u *User) CanReview() bool {
	return u.IsCoordinator() || u.IsAdmin()
}

// CanApprove reports whether the user may approve a request. The self-approval
// ban is evaluated separately by the guard, against the specific request.
func (u *User) CanApprove() bool {
	return u.IsCoordinator() || u.IsAdmin()
}

// SystemUser is the actor recorded for system-driven transitions (the expiry sweep)
func SystemUser() *User {
	return &User{ID: "system", Name: "System", Role: RoleAdmin, Active: true}
}
