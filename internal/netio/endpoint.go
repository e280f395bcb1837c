package netio

import (
	"net"

	"github.com/pjh456/eunet/internal/event"
)

// Family identifies the address family an Endpoint was constructed for.
type Family int

const (
	FamilyIPv4 Family = iota
	FamilyIPv6
)

// Endpoint is a family-tagged IPv4 or IPv6 address plus port, immutable
// after construction, stored in a form large enough for either family
// (a 16-byte array, with only the active family's prefix meaningful).
type Endpoint struct {
	family Family
	addr   [16]byte
	port   uint16
}

// Family returns the address family.
func (e Endpoint) Family() Family { return e.family }

// Port returns the port number.
func (e Endpoint) Port() uint16 { return e.port }

// IP returns the address as a net.IP, sized for the active family.
func (e Endpoint) IP() net.IP {
	if e.family == FamilyIPv4 {
		ip := make(net.IP, 4)
		copy(ip, e.addr[:4])
		return ip
	}
	ip := make(net.IP, 16)
	copy(ip, e.addr[:])
	return ip
}

// Equal compares two Endpoints byte-exact on the active family prefix.
func (e Endpoint) Equal(o Endpoint) bool {
	if e.family != o.family || e.port != o.port {
		return false
	}
	if e.family == FamilyIPv4 {
		var a, b [4]byte
		copy(a[:], e.addr[:4])
		copy(b[:], o.addr[:4])
		return a == b
	}
	return e.addr == o.addr
}

// FromIPString parses s as either an IPv4 or IPv6 address, failing with
// an InvalidArgument category error if neither family matches.
func FromIPString(s string, port uint16) (Endpoint, *event.Error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return Endpoint{}, event.NewError(event.DomainConfig).
			Category(event.CategoryInvalidArgument).
			Messagef("not a valid IP address: %q", s).
			Build()
	}
	if v4 := ip.To4(); v4 != nil {
		return FromIPv4Bytes(v4, port), nil
	}
	return FromIPv6(ip.To16(), port), nil
}

// FromIPv4BE builds an Endpoint from a big-endian uint32 IPv4 address.
func FromIPv4BE(addr uint32, port uint16) Endpoint {
	var b [4]byte
	b[0] = byte(addr >> 24)
	b[1] = byte(addr >> 16)
	b[2] = byte(addr >> 8)
	b[3] = byte(addr)
	return FromIPv4Bytes(b[:], port)
}

// FromIPv4Bytes builds an Endpoint from a 4-byte IPv4 address.
func FromIPv4Bytes(b []byte, port uint16) Endpoint {
	var e Endpoint
	e.family = FamilyIPv4
	copy(e.addr[:4], b)
	e.port = port
	return e
}

// FromIPv6 builds an Endpoint from a 16-byte IPv6 address.
func FromIPv6(b []byte, port uint16) Endpoint {
	var e Endpoint
	e.family = FamilyIPv6
	copy(e.addr[:], b)
	e.port = port
	return e
}

// AnyIPv4 returns the IPv4 wildcard address (0.0.0.0) with the given port.
func AnyIPv4(port uint16) Endpoint {
	return FromIPv4Bytes([]byte{0, 0, 0, 0}, port)
}

// LoopbackIPv4 returns 127.0.0.1 with the given port.
func LoopbackIPv4(port uint16) Endpoint {
	return FromIPv4Bytes([]byte{127, 0, 0, 1}, port)
}
