package domain

import "time"

type Role struct {
	ID          int64
	Name        string
	Permissions map[string]bool
}

type User struct {
	ID                 int64
	Name               string
	Email              string
	EmployeeNumber     string
	Phone              *string
	Department         *string
	PasswordHash       string
	Active             bool
	DeactivatedAt      *time.Time
	FailedAttempts     int
	LockedUntil        *time.Time
	MustChangePassword bool
	LastLoginAt        *time.Time
	Role               Role
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsDeactivated reports whether the account may never complete a login,
// regardless of the credentials presented.
func (u *User) IsDeactivated() bool {
	return !u.Active || u.DeactivatedAt != nil
}

// AccessClaims is the identity snapshot embedded in an access token.
type AccessClaims struct {
	UserID         int64
	Email          string
	Name           string
	RoleID         int64
	RoleName       string
	EmployeeNumber string
	Department     string
	ExpiresAt      time.Time
}

func ClaimsFor(u *User) AccessClaims {
	claims := AccessClaims{
		UserID:         u.ID,
		Email:          u.Email,
		Name:           u.Name,
		RoleID:         u.Role.ID,
		RoleName:       u.Role.Name,
		EmployeeNumber: u.EmployeeNumber,
	}
	if u.Department != nil {
		claims.Department = *u.Department
	}
	return claims
}

type AuditEntry struct {
	UserID      *int64
	Event       string
	Description string
	IPAddress   string
}
