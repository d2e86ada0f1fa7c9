package router

import (
	"fmt"
	"os"

	"github.com/azargarov/connpool/internal/httpmsg"
)

const (
	defaultGreeting = "Hello"
	markerContents  = "operator operating!"
)

// HelloRoute answers every request with a fixed greeting. Put it last.
type HelloRoute struct {
	Greeting string
}

func (h HelloRoute) Resolve(*httpmsg.Request) (Outcome, error) {
	if h.Greeting == "" {
		return Match(defaultGreeting), nil
	}
	return Match(h.Greeting), nil
}

// MarkerRoute writes a marker file each time Path is requested and
// answers with the default greeting.
type MarkerRoute struct {
	Path string
	File string
	hits int
}

func (m *MarkerRoute) Resolve(req *httpmsg.Request) (Outcome, error) {
	if req.Path != m.Path {
		return NoMatch(), nil
	}
	if err := os.WriteFile(m.File, []byte(markerContents), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("router: write marker %s: %w", m.File, err)
	}
	m.hits++
	return Match(defaultGreeting), nil
}

// Hits returns how many times the marker was written.
func (m *MarkerRoute) Hits() int { return m.hits }

// GreetRoute answers Path with a greeting for the name query parameter.
type GreetRoute struct {
	Path string
}

func (g GreetRoute) Resolve(req *httpmsg.Request) (Outcome, error) {
	if req.Path != g.Path {
		return NoMatch(), nil
	}
	name, ok := req.Param("name")
	if !ok || name == "" {
		return Missing("name"), nil
	}
	return Match(fmt.Sprintf("%s, %s", defaultGreeting, name)), nil
}

// Default builds the stock route table: marker at /test, greeting at
// /greet, fixed greeting for everything else.
func Default(markerFile string) *Router {
	return New(
		&MarkerRoute{Path: "/test", File: markerFile},
		GreetRoute{Path: "/greet"},
		HelloRoute{},
	)
}
