//go:build linux

package poller

import (
	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/ioerr"
	"github.com/pjh456/eunet/internal/logx"
	"golang.org/x/sys/unix"
)

// epollPoller wraps an epoll instance. Grounded on eventloop's FastPoller
// (poller_linux.go) - same EpollCreate1/EpollCtl/EpollWait shape - but
// tracks the interest set in a map rather than a direct-indexed array: a
// probe manages at most a handful of fds per scenario, so the array's
// O(1)-by-huge-prealloc tradeoff isn't worth it here.
type epollPoller struct {
	epfd     int
	interest map[int]Mask
	eventBuf [MaxBatch]unix.EpollEvent
	log      logx.Logger
}

func newPlatformPoller(log logx.Logger) (platformPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, mapSyscallError(err)
	}
	return &epollPoller{epfd: epfd, interest: make(map[int]Mask), log: log}, nil
}

func (p *epollPoller) add(fd int, mask Mask) error {
	if _, tracked := p.interest[fd]; tracked {
		return p.modify(fd, mask)
	}
	ev := &unix.EpollEvent{Events: maskToEpoll(mask), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return mapSyscallError(err)
	}
	p.interest[fd] = mask
	return nil
}

func (p *epollPoller) modify(fd int, mask Mask) error {
	if _, tracked := p.interest[fd]; !tracked {
		return p.add(fd, mask)
	}
	ev := &unix.EpollEvent{Events: maskToEpoll(mask), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return mapSyscallError(err)
	}
	p.interest[fd] = mask
	return nil
}

func (p *epollPoller) remove(fd int) error {
	if _, tracked := p.interest[fd]; !tracked {
		return ErrNotTracked
	}
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(p.interest, fd)
	if err != nil {
		return mapSyscallError(err)
	}
	return nil
}

func (p *epollPoller) wait(timeoutMs int) ([]Event, error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				p.log.Debug().Int("epfd", p.epfd).Log("epoll_wait interrupted, retrying")
				continue
			}
			return nil, mapSyscallError(err)
		}
		if n == 0 {
			return nil, nil
		}
		out := make([]Event, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, Event{
				FD:   int(p.eventBuf[i].Fd),
				Mask: epollToMask(p.eventBuf[i].Events),
			})
		}
		return out, nil
	}
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}

func maskToEpoll(mask Mask) uint32 {
	var e uint32
	if mask&Readable != 0 {
		e |= unix.EPOLLIN
	}
	if mask&Writable != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func mapSyscallError(err error) error {
	return ioerr.FromErrno(event.DomainSystem, "epoll", err)
}

func epollToMask(e uint32) Mask {
	var mask Mask
	if e&unix.EPOLLIN != 0 {
		mask |= Readable
	}
	if e&unix.EPOLLOUT != 0 {
		mask |= Writable
	}
	if e&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		mask |= ErrorOrHangup
	}
	return mask
}
