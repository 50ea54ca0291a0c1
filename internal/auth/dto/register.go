package dto

type RegisterInput struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"telefono,omitempty"`
	Role     string `json:"rol,omitempty"`
}

type ChangePasswordInput struct {
	NewPassword     string `json:"nuevoPassword"`
	ConfirmPassword string `json:"confirmarPassword"`
}
