package dto

// RegisterRequest - тело запроса регистрации
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse - ответ на вход (OAuth2 password flow)
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// User - минимальная запись о пользователе, которую возвращает /users/me
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}
