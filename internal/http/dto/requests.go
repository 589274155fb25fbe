package dto

type LoginRequest struct {
	APIKey string `json:"api_key"`
}

type CreatePromoMessageRequest struct {
	Body     string `json:"body"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}
