package dto

type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	IPAddress  string `json:"-"`
	UserAgent  string `json:"-"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

type LoginResponse struct {
	User      UserOutput    `json:"usuario"`
	Tokens    TokenResponse `json:"tokens"`
	SessionID int64         `json:"sesion_id"`
}

type LogoutInput struct {
	RefreshToken string `json:"refreshToken"`
}
