package netio

import (
	"context"

	"github.com/pjh456/eunet/internal/event"
)

// FamilyPreference expresses which address family a Resolver should
// prefer when both are available.
type FamilyPreference int

const (
	PreferEither FamilyPreference = iota
	PreferIPv4
	PreferIPv6
)

// Resolver is the external collaborator contract for DNS resolution. The
// core assumes the returned slice is non-empty and iteration-ordered by
// the resolver's own preference; it never inspects resolution algorithm
// internals. A concrete implementation lives in internal/resolvers.
type Resolver interface {
	Resolve(ctx context.Context, host string, port uint16, pref FamilyPreference) ([]Endpoint, *event.Error)
}
