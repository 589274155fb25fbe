package dto

import "github.com/llighterr/promo-task/internal/models"

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorListResponse struct {
	Errors []string `json:"errors"`
}

type SuccessResponse struct {
	OK     bool   `json:"ok"`
	Data   any    `json:"data,omitempty"`
	Notice string `json:"notice,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// NewPromoMessageResponse is the compose-form payload: an empty draft
// plus one page of the cohort the current bounds select.
type NewPromoMessageResponse struct {
	Message models.PromoMessage `json:"message"`
	Users   []models.CohortUser `json:"users"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
	Total   int                 `json:"total"`
}
