//go:build linux || darwin

package netio

import "golang.org/x/sys/unix"

// AsRaw converts the Endpoint into the unix.Sockaddr shape needed for raw
// syscalls (connect/bind), family-generic.
func (e Endpoint) AsRaw() unix.Sockaddr {
	if e.family == FamilyIPv4 {
		sa := &unix.SockaddrInet4{Port: int(e.port)}
		copy(sa.Addr[:], e.addr[:4])
		return sa
	}
	sa := &unix.SockaddrInet6{Port: int(e.port)}
	copy(sa.Addr[:], e.addr[:])
	return sa
}

func domainForFamily(f Family) int {
	if f == FamilyIPv4 {
		return unix.AF_INET
	}
	return unix.AF_INET6
}
