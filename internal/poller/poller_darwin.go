//go:build darwin

package poller

import (
	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/ioerr"
	"github.com/pjh456/eunet/internal/logx"
	"golang.org/x/sys/unix"
)

// pollPoller is the non-Linux fallback, grounded on the same interest-set
// shape as epollPoller but driven by poll(2) instead of epoll(2) - there
// is no direct kqueue binding in this module's dependency set, and a
// probe tool's fd count is always small enough that poll(2)'s O(n) scan
// is immaterial.
type pollPoller struct {
	interest map[int]Mask
	log      logx.Logger
}

func newPlatformPoller(log logx.Logger) (platformPoller, error) {
	return &pollPoller{interest: make(map[int]Mask), log: log}, nil
}

func (p *pollPoller) add(fd int, mask Mask) error {
	p.interest[fd] = mask
	return nil
}

func (p *pollPoller) modify(fd int, mask Mask) error {
	if _, tracked := p.interest[fd]; !tracked {
		return p.add(fd, mask)
	}
	p.interest[fd] = mask
	return nil
}

func (p *pollPoller) remove(fd int) error {
	if _, tracked := p.interest[fd]; !tracked {
		return ErrNotTracked
	}
	delete(p.interest, fd)
	return nil
}

func (p *pollPoller) wait(timeoutMs int) ([]Event, error) {
	fds := make([]unix.PollFd, 0, len(p.interest))
	order := make([]int, 0, len(p.interest))
	for fd, mask := range p.interest {
		var events int16
		if mask&Readable != 0 {
			events |= unix.POLLIN
		}
		if mask&Writable != 0 {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
		order = append(order, fd)
	}

	for {
		n, err := unix.Poll(fds, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				p.log.Debug().Int("nfds", len(fds)).Log("poll interrupted, retrying")
				continue
			}
			return nil, ioerr.FromErrno(event.DomainSystem, "poll", err)
		}
		if n == 0 {
			return nil, nil
		}
		out := make([]Event, 0, n)
		for i, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}
			var mask Mask
			if pfd.Revents&unix.POLLIN != 0 {
				mask |= Readable
			}
			if pfd.Revents&unix.POLLOUT != 0 {
				mask |= Writable
			}
			if pfd.Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
				mask |= ErrorOrHangup
			}
			out = append(out, Event{FD: order[i], Mask: mask})
		}
		return out, nil
	}
}

func (p *pollPoller) close() error {
	return nil
}
