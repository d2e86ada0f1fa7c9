package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/azargarov/connpool/internal/httpmsg"
)

var (
	// ErrUnknownRoute is returned when no route matches.
	ErrUnknownRoute = errors.New("router: unknown route")

	// ErrMissingParameter is wrapped by MissingParamError.
	ErrMissingParameter = errors.New("router: missing parameter")
)

// MissingParamError names the parameter a matching route required.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingParameter, e.Param)
}

func (e *MissingParamError) Unwrap() error { return ErrMissingParameter }

// Router tries its routes in order; the first Matched or
// MissingParameter outcome wins.
//
// Router is not safe for concurrent use. Share it through Locked.
type Router struct {
	routes []Route
}

func New(routes ...Route) *Router {
	return &Router{routes: routes}
}

// Add appends a route at the lowest priority.
func (r *Router) Add(route Route) {
	r.routes = append(r.routes, route)
}

func (r *Router) Len() int { return len(r.routes) }

// Dispatch returns the body produced by the first matching route.
func (r *Router) Dispatch(req *httpmsg.Request) (string, error) {
	for _, route := range r.routes {
		out, err := route.Resolve(req)
		if err != nil {
			return "", err
		}
		switch out.Kind {
		case Matched:
			return out.Body, nil
		case MissingParameter:
			return "", &MissingParamError{Param: out.Param}
		}
	}
	return "", ErrUnknownRoute
}

// Locked is a Router shared between workers. The lock covers a single
// Dispatch, never a whole connection.
type Locked struct {
	mu sync.Mutex
	r  *Router
}

func NewLocked(r *Router) *Locked {
	return &Locked{r: r}
}

func (l *Locked) Dispatch(req *httpmsg.Request) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Dispatch(req)
}
