package models

import (
	"time"

	"github.com/google/uuid"
)

// CohortUser is the fixed projection exposed by cohort queries and the
// CSV export. Users are read-only from this service's perspective —
// registration and the published_ads_count counter belong to other
// systems — so this projection is the only user shape read here. The
// export schema is this struct, not whatever columns the users table
// happens to have.
type CohortUser struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
