package dto

import (
	"time"

	"github.com/AnthoniusHendriyanto/hotel-auth-service/internal/auth/domain"
)

type RoleOutput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Permissions map[string]bool `json:"permisos"`
}

type UserOutput struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"nombre"`
	Email              string     `json:"email"`
	EmployeeNumber     string     `json:"numero_empleado"`
	Phone              *string    `json:"telefono"`
	Department         *string    `json:"departamento"`
	Role               RoleOutput `json:"rol"`
	Active             bool       `json:"activo"`
	MustChangePassword bool       `json:"debe_cambiar_password"`
	LastLoginAt        *time.Time `json:"ultimo_acceso"`
	CreatedAt          time.Time  `json:"creado_en"`
}

func NewUserOutput(u *domain.User) UserOutput {
	return UserOutput{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmployeeNumber: u.EmployeeNumber,
		Phone:          u.Phone,
		Department:     u.Department,
		Role: RoleOutput{
			ID:          u.Role.ID,
			Name:        u.Role.Name,
			Permissions: u.Role.Permissions,
		},
		Active:             u.Active && u.DeactivatedAt == nil,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

type SessionOutput struct {
	ID               int64     `json:"id"`
	IPAddress        string    `json:"ip"`
	UserAgent        string    `json:"user_agent"`
	Device           string    `json:"dispositivo"`
	Browser          string    `json:"navegador"`
	OS               string    `json:"sistema_operativo"`
	CreatedAt        time.Time `json:"creada_en"`
	RefreshExpiresAt time.Time `json:"expira_en"`
}

func NewSessionOutput(s domain.Session) SessionOutput {
	return SessionOutput{
		ID:               s.ID,
		IPAddress:        s.Client.IPAddress,
		UserAgent:        s.Client.UserAgent,
		Device:           s.Client.Device,
		Browser:          s.Client.Browser,
		OS:               s.Client.OS,
		CreatedAt:        s.CreatedAt,
		RefreshExpiresAt: s.RefreshExpiresAt,
	}
}
