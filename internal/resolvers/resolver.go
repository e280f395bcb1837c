// Package resolvers provides the stdlib-backed concrete implementation
// of netio.Resolver. It exists because the core engine never does DNS
// itself (netio.Resolver is an external collaborator interface); this is
// the one implementation wired into the CLI entrypoint.
package resolvers

import (
	"context"
	"errors"
	"net"

	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/netio"
)

// StdResolver implements netio.Resolver on top of net.Resolver, mapping
// net.DNSError into the probe's Category vocabulary per the DNS-specific
// normative table (IsNotFound -> TargetNotFound, IsTemporary -> Busy,
// everything else -> ResolutionFailed).
type StdResolver struct {
	resolver *net.Resolver
}

// NewStdResolver returns a StdResolver using net.DefaultResolver.
func NewStdResolver() *StdResolver {
	return &StdResolver{resolver: net.DefaultResolver}
}

// Resolve implements netio.Resolver.
func (r *StdResolver) Resolve(ctx context.Context, host string, port uint16, pref netio.FamilyPreference) ([]netio.Endpoint, *event.Error) {
	network := "ip"
	switch pref {
	case netio.PreferIPv4:
		network = "ip4"
	case netio.PreferIPv6:
		network = "ip6"
	}

	ips, err := r.resolver.LookupIP(ctx, network, host)
	if err != nil {
		return nil, mapDNSError(host, err)
	}
	if len(ips) == 0 {
		return nil, event.NewError(event.DomainDNS).
			Category(event.CategoryTargetNotFound).
			Messagef("no addresses found for %q", host).
			Build()
	}

	out := make([]netio.Endpoint, 0, len(ips))
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			out = append(out, netio.FromIPv4Bytes(v4, port))
			continue
		}
		out = append(out, netio.FromIPv6(ip.To16(), port))
	}

	if pref == netio.PreferIPv4 {
		out = reorderPreferred(out, netio.FamilyIPv4)
	} else if pref == netio.PreferIPv6 {
		out = reorderPreferred(out, netio.FamilyIPv6)
	}
	return out, nil
}

// reorderPreferred stable-partitions eps so every address of family fam
// sorts before the rest, preserving relative order within each group.
func reorderPreferred(eps []netio.Endpoint, fam netio.Family) []netio.Endpoint {
	out := make([]netio.Endpoint, 0, len(eps))
	for _, e := range eps {
		if e.Family() == fam {
			out = append(out, e)
		}
	}
	for _, e := range eps {
		if e.Family() != fam {
			out = append(out, e)
		}
	}
	return out
}

func mapDNSError(host string, err error) *event.Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return event.NewError(event.DomainDNS).
				Category(event.CategoryTargetNotFound).
				Message(dnsErr.Error()).
				Build()
		case dnsErr.IsTemporary:
			return event.NewError(event.DomainDNS).
				Category(event.CategoryBusy).
				Message(dnsErr.Error()).
				Build()
		default:
			return event.NewError(event.DomainDNS).
				Category(event.CategoryResolutionFailed).
				Message(dnsErr.Error()).
				Build()
		}
	}
	return event.NewError(event.DomainDNS).
		Category(event.CategoryResolutionFailed).
		Messagef("resolve %q: %s", host, err).
		Build()
}

var _ netio.Resolver = (*StdResolver)(nil)
