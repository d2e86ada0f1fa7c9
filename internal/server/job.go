package server

import (
	"net"
	"time"
)

// Exchange summarizes one request/response on a connection.
type Exchange struct {
	Remote  string
	Method  string
	Path    string
	Status  int
	Elapsed time.Duration
}

// HandlerFunc serves a single connection. It must not close conn.
type HandlerFunc func(conn net.Conn) (Exchange, error)

// ConnJob is the unit of work submitted to the pool: one accepted
// connection and the handler that serves it. The job owns the
// connection and always closes it.
type ConnJob struct {
	Conn   net.Conn
	Handle HandlerFunc
}

// Execute serves the connection and closes it, even if Handle panics.
func (j *ConnJob) Execute() (Exchange, error) {
	defer j.Conn.Close()

	start := time.Now()
	ex, err := j.Handle(j.Conn)
	ex.Elapsed = time.Since(start)
	return ex, err
}
