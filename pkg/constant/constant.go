package constant

const (
	DefaultTokenType = "Bearer"

	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleTechnician = "TECNICO"
	RoleFrontDesk  = "RECEPCION"

	// DefaultUserRole is assigned on registration when no role is requested.
	DefaultUserRole = RoleTechnician

	EmployeeNumberPrefix = "EMP"

	CloseReasonUser       = "user"
	CloseReasonExpiration = "expiration"

	AuditLoginFailed     = "LOGIN_FAILED"
	AuditAccountLocked   = "ACCOUNT_LOCKED"
	AuditAccountUnlocked = "ACCOUNT_UNLOCKED"
	AuditUserRegistered  = "USER_REGISTERED"
	AuditPasswordChanged = "PASSWORD_CHANGED"
	AuditSessionsRevoked = "SESSIONS_REVOKED"
)

// PrivilegedRoles can only be granted by an authenticated ADMIN.
var PrivilegedRoles = map[string]bool{
	RoleAdmin:      true,
	RoleSupervisor: true,
}

// ValidRoles is the fixed set of role names a user can hold.
var ValidRoles = map[string]bool{
	RoleAdmin:      true,
	RoleSupervisor: true,
	RoleTechnician: true,
	RoleFrontDesk:  true,
}
