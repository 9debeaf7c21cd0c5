package handler

import "github.com/odooqa/qa-system/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Questions and answers ---

type createQuestionRequest struct {
	Title       string   `json:"title"       validate:"required,notblank,max=300"`
	Description string   `json:"description" validate:"required,notblank,max=20000"`
	Tags        []string `json:"tags"        validate:"max=10,dive,max=32"`
}

type createAnswerRequest struct {
	Text string `json:"text" validate:"required,notblank,max=20000"`
}

type voteRequest struct {
	VoteType string `json:"voteType" validate:"required,oneof=up down"`
}
