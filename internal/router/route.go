// Package router maps parsed requests to response bodies through an
// ordered list of routes.
package router

import (
	"github.com/azargarov/connpool/internal/httpmsg"
)

// OutcomeKind tells the router what a route made of a request.
type OutcomeKind int

const (
	// NotMatched lets the router try the next route.
	NotMatched OutcomeKind = iota

	// Matched stops the search; Body is the response body.
	Matched

	// MissingParameter stops the search; Param names what was missing.
	MissingParameter
)

// Outcome is the result of Route.Resolve.
type Outcome struct {
	Kind  OutcomeKind
	Body  string
	Param string
}

func Match(body string) Outcome    { return Outcome{Kind: Matched, Body: body} }
func NoMatch() Outcome             { return Outcome{Kind: NotMatched} }
func Missing(param string) Outcome { return Outcome{Kind: MissingParameter, Param: param} }

// Route is one entry in a Router.
type Route interface {
	Resolve(req *httpmsg.Request) (Outcome, error)
}

// RouteFunc adapts a function to Route.
type RouteFunc func(req *httpmsg.Request) (Outcome, error)

func (f RouteFunc) Resolve(req *httpmsg.Request) (Outcome, error) { return f(req) }

func (k OutcomeKind) String() string {
	switch k {
	case NotMatched:
		return "not_matched"
	case Matched:
		return "matched"
	case MissingParameter:
		return "missing_parameter"
	default:
		return "unknown"
	}
}
