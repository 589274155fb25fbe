package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoMessage is immutable once inserted. DateFrom/DateTo keep the raw
// submitted strings: the audience is always recomputed from them, never
// stored as a recipient snapshot.
type PromoMessage struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	DateFrom  string    `json:"date_from"`
	DateTo    string    `json:"date_to"`
	CreatedAt time.Time `json:"created_at"`
}
