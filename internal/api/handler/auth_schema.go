package handler

type loginRequest struct {
	Email    string `json:"email"    validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,max=72"`
	FullName string `json:"fullName" validate:"notblank"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	ExpiresIn int64  `json:"expiresIn"` // milliseconds
}
