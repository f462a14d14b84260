package entity

import (
	"time"

	"pdao-registration/pkg/utils"

	"github.com/google/uuid"
)

type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// touch stamps the record for a save at now.
func (b *Base) touch(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = utils.GenerateUUID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
