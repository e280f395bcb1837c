// Package httpscenario implements a minimal HTTP/1.1 GET probe as a
// single engine.Scenario, composed entirely from the lower-level netio,
// poller, buffer, and orchestrator components. It is the vertical slice
// that exercises every layer of the probe end to end.
package httpscenario

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pjh456/eunet/internal/buffer"
	"github.com/pjh456/eunet/internal/event"
	"github.com/pjh456/eunet/internal/logx"
	"github.com/pjh456/eunet/internal/netio"
	"github.com/pjh456/eunet/internal/orchestrator"
	"github.com/pjh456/eunet/internal/poller"
)

// Config parameterises a single GET scenario run.
type Config struct {
	URL            string
	ConnectTimeout time.Duration
	IOTimeout      time.Duration
	Resolver       netio.Resolver
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = 5 * time.Second
	}
	return c
}

// Scenario is an engine.Scenario that performs a single HTTP/1.1 GET
// against Config.URL, emitting the full event sequence the lifecycle FSM
// understands along the way.
type Scenario struct {
	cfg Config
	log logx.Logger
}

// New returns a Scenario for the given config. A nil logger disables
// logging.
func New(cfg Config, log logx.Logger) *Scenario {
	if log == nil {
		log = logx.NewNop()
	}
	return &Scenario{cfg: cfg.withDefaults(), log: log}
}

// Run implements engine.Scenario.
func (s *Scenario) Run(o *orchestrator.Orchestrator) error {
	sid := o.NewSession()

	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return s.fail(o, sid, event.DomainConfig, event.CategoryInvalidArgument, err.Error())
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "80"
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return s.fail(o, sid, event.DomainConfig, event.CategoryInvalidArgument, "invalid port: "+port)
	}

	_ = o.Emit(event.Info(event.DNSResolveStart, "resolving "+host).WithSessionID(sid))
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConnectTimeout)
	defer cancel()

	eps, resolveErr := s.cfg.Resolver.Resolve(ctx, host, uint16(portNum), netio.PreferEither)
	if resolveErr != nil {
		_ = o.Emit(event.Failure(event.DNSResolveDone, resolveErr, event.UnboundFD).WithSessionID(sid))
		return resolveErr
	}
	_ = o.Emit(event.Info(event.DNSResolveDone, fmt.Sprintf("resolved %d address(es)", len(eps))).WithSessionID(sid))

	ep := eps[0]
	p, pollErr := poller.New(nil)
	if pollErr != nil {
		return s.fail(o, sid, event.DomainSystem, event.CategoryUnknown, pollErr.Error())
	}
	defer p.Close()

	sock, sockErr := netio.NewSocket(ep.Family(), p, s.log)
	if sockErr != nil {
		_ = o.Emit(event.Failure(event.TCPConnectStart, sockErr).WithSessionID(sid))
		return sockErr
	}
	defer sock.Close()

	_ = o.Emit(event.Info(event.TCPConnectStart, "connecting", sock.FD()).WithSessionID(sid))
	if connErr := sock.Connect(ep, int(s.cfg.ConnectTimeout.Milliseconds())); connErr != nil {
		_ = o.Emit(event.Failure(event.TCPConnectTimeout, connErr, sock.FD()).WithSessionID(sid))
		return connErr
	}
	_ = o.Emit(event.Info(event.TCPConnectSuccess, "connected", sock.FD()).WithSessionID(sid))

	req := buildRequest(host, u)
	_ = o.Emit(event.Info(event.HTTPRequestBuild, "built request", sock.FD()).WithSessionID(sid))

	out := buffer.New(len(req))
	out.Append(req)
	if _, writeErr := sock.Write(out, int(s.cfg.IOTimeout.Milliseconds())); writeErr != nil {
		_ = o.Emit(event.Failure(event.HTTPSent, writeErr, sock.FD()).WithSessionID(sid))
		return writeErr
	}
	_ = o.Emit(event.Info(event.HTTPSent, "request sent", sock.FD()).WithSessionID(sid))

	in := buffer.New(4096)
	headersSeen := false
	for {
		n, readErr := sock.Read(in, int(s.cfg.IOTimeout.Milliseconds()))
		if readErr != nil && readErr.Category() == event.CategoryPeerClosed {
			break // server closed the connection after its response
		}
		if readErr != nil {
			_ = o.Emit(event.Failure(event.HTTPReceived, readErr, sock.FD()).WithSessionID(sid))
			return readErr
		}
		if !headersSeen && bytes.Contains(in.Readable(), []byte("\r\n\r\n")) {
			headersSeen = true
			_ = o.Emit(event.Info(event.HTTPHeadersReceived, "headers received", sock.FD()).WithSessionID(sid))
		}
		if n == 0 {
			break
		}
	}
	_ = o.Emit(event.Info(event.HTTPBodyDone, fmt.Sprintf("received %d bytes", in.Len()), sock.FD()).WithSessionID(sid))
	_ = o.Emit(event.Info(event.ConnectionClosed, "closed", sock.FD()).WithSessionID(sid))
	return nil
}

func (s *Scenario) fail(o *orchestrator.Orchestrator, sid uint64, domain event.Domain, category event.Category, msg string) error {
	failErr := event.NewError(domain).Category(category).Message(msg).Build()
	_ = o.Emit(event.Failure(event.TCPConnectStart, failErr).WithSessionID(sid))
	return failErr
}

func buildRequest(host string, u *url.URL) []byte {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	b.WriteString("Connection: close\r\n")
	b.WriteString("User-Agent: eunet/1.0\r\n")
	b.WriteString("\r\n")
	return []byte(b.String())
}
