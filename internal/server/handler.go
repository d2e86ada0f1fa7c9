package server

import (
	"errors"
	"net"
	"time"

	"github.com/azargarov/connpool/internal/httpmsg"
	"github.com/azargarov/connpool/internal/router"
	"go.uber.org/multierr"
)

// Dispatcher resolves a parsed request to a response body.
// *router.Locked is the usual implementation.
type Dispatcher interface {
	Dispatch(req *httpmsg.Request) (string, error)
}

// Handler reads one request from a connection, dispatches it and writes
// the response.
type Handler struct {
	router      Dispatcher
	readTimeout time.Duration
}

func NewHandler(d Dispatcher, readTimeout time.Duration) *Handler {
	return &Handler{router: d, readTimeout: readTimeout}
}

// Serve implements HandlerFunc.
func (h *Handler) Serve(conn net.Conn) (Exchange, error) {
	ex := Exchange{Method: "-", Path: "-"}
	if addr := conn.RemoteAddr(); addr != nil {
		ex.Remote = addr.String()
	}
	if h.readTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(h.readTimeout))
	}

	var resp httpmsg.Response
	req, err := httpmsg.ReadRequest(conn)
	if err != nil {
		resp = httpmsg.BadRequest().Body(err.Error()).Build()
	} else {
		ex.Method, ex.Path = req.Method, req.Path
		resp = h.respond(req)
	}
	ex.Status = resp.StatusCode

	if _, werr := resp.WriteTo(conn); werr != nil {
		return ex, multierr.Append(err, werr)
	}
	return ex, err
}

func (h *Handler) respond(req *httpmsg.Request) httpmsg.Response {
	body, err := h.router.Dispatch(req)
	switch {
	case err == nil:
		return httpmsg.Success().Body(body).Build()
	case errors.Is(err, router.ErrUnknownRoute):
		return httpmsg.NotFound().Body(err.Error()).Build()
	case errors.Is(err, router.ErrMissingParameter):
		return httpmsg.BadRequest().Body(err.Error()).Build()
	default:
		return httpmsg.InternalError().Build()
	}
}
