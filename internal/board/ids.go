package board

import (
	"github.com/google/uuid"

	"github.com/perch-labs/noticeboard/internal/domain"
)

// IDSource allocates fresh, globally-unique record identifiers. It is invoked
// exactly once per successful insert; failed operations never consume an id.
type IDSource interface {
	NewID() domain.ID
}

type uuidSource struct{}

// UUIDSource returns the production IDSource backed by random UUIDs.
func UUIDSource() IDSource { return uuidSource{} }

func (uuidSource) NewID() domain.ID { return domain.ID(uuid.NewString()) }
