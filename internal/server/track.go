package server

import (
	"net"
	"sync"
	"time"
)

// trackingListener counts accepted connections until they are closed, so a
// server that stops accepting can still wait for requests in flight.
type trackingListener struct {
	net.Listener
	wg sync.WaitGroup
}

func newTrackingListener(ln net.Listener) *trackingListener {
	return &trackingListener{Listener: ln}
}

func (l *trackingListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	l.wg.Add(1)
	return &trackedConn{Conn: c, done: l.wg.Done}, nil
}

// wait reports whether every accepted connection closed within timeout.
// Call it only after Accept has stopped returning connections.
func (l *trackingListener) wait(timeout time.Duration) bool {
	closed := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(closed)
	}()

	select {
	case <-closed:
		return true
	case <-time.After(timeout):
		return false
	}
}

type trackedConn struct {
	net.Conn
	once sync.Once
	done func()
}

func (c *trackedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.done)
	return err
}
