//go:build linux

package caps

import "golang.org/x/sys/unix"

// linuxManager reads this process's effective capability set via
// capget(2) and reports which of the capabilities named in capNames are
// in it. Dropping is left unimplemented - CAP_SETPCAP plus a
// PR_CAPBSET_DROP loop is sufficient on modern kernels, but actually
// exercising it needs a privileged test environment this probe doesn't
// assume.
type linuxManager struct{}

func newPlatformManager() Manager { return linuxManager{} }

var capNames = map[uintptr]string{
	0:  "CAP_CHOWN",
	1:  "CAP_DAC_OVERRIDE",
	2:  "CAP_DAC_READ_SEARCH",
	3:  "CAP_FOWNER",
	6:  "CAP_SETGID",
	7:  "CAP_SETUID",
	10: "CAP_NET_BIND_SERVICE",
	12: "CAP_NET_ADMIN",
	13: "CAP_NET_RAW",
	21: "CAP_SYS_ADMIN",
}

func (linuxManager) Available() []string {
	hdr := unix.CapUserHeader{Version: unix.LINUX_CAPABILITY_VERSION_3}
	var data [2]unix.CapUserData
	if err := unix.Capget(&hdr, &data[0]); err != nil {
		return nil
	}
	var names []string
	for bit, name := range capNames {
		if data[bit/32].Effective&(1<<(bit%32)) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func (linuxManager) DropAll() error {
	return nil
}
