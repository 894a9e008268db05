package relay

import (
	"fmt"
	"net"
	"time"
)

// udpSource is the minimal UDP datagram collaborator the ingest worker
// consumes: open/join, read with a deadline, close. Per spec §1 this
// component is deliberately out of scope for deep review — it is a thin
// wrapper over net.UDPConn, not part of the inspected/tested core.
type udpSource struct {
	conn *net.UDPConn
}

// openUDPSource binds (and, for multicast addresses, joins) a UDP
// endpoint for "host:port".
func openUDPSource(addr string) (*udpSource, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	var conn *net.UDPConn
	if udpAddr.IP != nil && udpAddr.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp", nil, udpAddr)
	} else {
		conn, err = net.ListenUDP("udp", udpAddr)
	}
	if err != nil {
		return nil, fmt.Errorf("opening udp endpoint %s: %w", addr, err)
	}

	return &udpSource{conn: conn}, nil
}

// readTimeout reads up to len(buf) bytes, returning (0, nil) on timeout to
// match the reference contract ("1s timeout returning 0").
func (u *udpSource) readTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, _, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (u *udpSource) close() error {
	return u.conn.Close()
}
