// Package httpmsg reads HTTP/1.x request heads off a connection and
// renders responses back onto it.
package httpmsg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	// MaxHeaderBytes bounds how much of the connection ReadRequest consumes.
	MaxHeaderBytes = 8 << 10

	// MaxHeaders bounds the number of header fields in one request.
	MaxHeaders = 64
)

var (
	ErrMalformedRequest = errors.New("httpmsg: malformed request")
	ErrTooManyHeaders   = errors.New("httpmsg: too many headers")
)

// Request is the parsed head of one HTTP request. The body, if any, is
// left unread.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Proto  string
	Header http.Header
}

// Param returns the first value of the query parameter name.
func (r *Request) Param(name string) (string, bool) {
	vs, ok := r.Query[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// ReadRequest parses one request head from r.
func ReadRequest(r io.Reader) (*Request, error) {
	br := bufio.NewReader(io.LimitReader(r, MaxHeaderBytes))
	hr, err := http.ReadRequest(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if n := headerCount(hr.Header); n > MaxHeaders {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyHeaders, n, MaxHeaders)
	}
	return &Request{
		Method: hr.Method,
		Path:   hr.URL.Path,
		Query:  hr.URL.Query(),
		Proto:  hr.Proto,
		Header: hr.Header,
	}, nil
}

func headerCount(h http.Header) int {
	n := 0
	for _, vs := range h {
		n += len(vs)
	}
	return n
}
