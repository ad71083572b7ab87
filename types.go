package authcore

import "context"

// Identity is the immutable user view carried through one request. It is
// owned by the UserProvider; the core only references it.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// UserRecord is the account record returned by [UserProvider]. It carries
// the password hash alongside the identity fields.
type UserRecord struct {
	UserID       string
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// Identity projects the record's identity fields.
func (r UserRecord) Identity() Identity {
	return Identity{
		UserID: r.UserID,
		Email:  r.Email,
		Name:   r.Name,
		Role:   r.Role,
	}
}

// CreateUserInput is the input for [UserProvider.CreateUser]. The password
// arrives pre-hashed; providers never see plaintext.
type CreateUserInput struct {
	Email          string
	PasswordHash   string
	Name           string
	PhoneNumber    string
	ManagementCode string
	Role           string
}

// UserProvider is the interface callers implement to connect authcore to
// their user database. Lookups must return [ErrUserNotFound] for unknown
// emails and CreateUser must return [ErrEmailExists] for duplicates; any
// other error is treated as a backend failure.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// SignupRequest is the input for [Manager.Signup].
type SignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phoneNumber"`
	ManagementCode string `json:"managementCode"`
}

// UserInfo is the public user projection embedded in [AuthResult].
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AuthResult is the transport-agnostic outcome of signup, login, and
// refresh. The refresh token never appears in the JSON body; it travels
// only through the cookie directive.
type AuthResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	AccessToken string    `json:"accessToken,omitempty"`
	User        *UserInfo `json:"user,omitempty"`

	// Cookie is the set-cookie instruction for the boundary layer.
	Cookie *CookieDirective `json:"-"`
	// FamilyID identifies the session family created or rotated by the
	// operation, for callers that track sessions (logout by family).
	FamilyID string `json:"-"`
}

// Principal is the authenticated caller extracted from an access token.
// It is passed explicitly through call boundaries, never stored in
// package-level state.
type Principal struct {
	UserID string
	Role   string
}

// SessionInfo is a read-only view of one active session family, returned
// by [Manager.ActiveSessions].
type SessionInfo struct {
	FamilyID      string
	CreatedAt     int64
	LastRotatedAt int64
	ExpiresAt     int64
}
