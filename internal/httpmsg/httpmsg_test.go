package httpmsg

import (
	"bufio"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		method  string
		path    string
		param   string
		wantErr error
	}{
		{
			name:   "simple get",
			raw:    "GET /greet?name=ada HTTP/1.1\r\nHost: localhost\r\n\r\n",
			method: "GET",
			path:   "/greet",
			param:  "ada",
		},
		{
			name:   "root",
			raw:    "GET / HTTP/1.0\r\n\r\n",
			method: "GET",
			path:   "/",
		},
		{
			name:    "garbage",
			raw:     "not http at all\r\n\r\n",
			wantErr: ErrMalformedRequest,
		},
		{
			name:    "truncated",
			raw:     "GET / HTTP/1.1\r\nHost: loc",
			wantErr: ErrMalformedRequest,
		},
		{
			name:    "too many headers",
			raw:     "GET / HTTP/1.1\r\n" + strings.Repeat("X-A: b\r\n", MaxHeaders+1) + "\r\n",
			wantErr: ErrTooManyHeaders,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req, err := ReadRequest(strings.NewReader(tc.raw))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v; want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadRequest: %v", err)
			}
			if req.Method != tc.method || req.Path != tc.path {
				t.Fatalf("got %s %s; want %s %s", req.Method, req.Path, tc.method, tc.path)
			}
			if got, _ := req.Param("name"); got != tc.param {
				t.Fatalf("name = %q; want %q", got, tc.param)
			}
		})
	}
}

func TestResponseBytesParse(t *testing.T) {
	raw := Success().Header("X-Pool", "yes").Body("Hello").Build().Bytes()

	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(string(raw))), nil)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Pool") != "yes" {
		t.Fatalf("X-Pool = %q; want yes", resp.Header.Get("X-Pool"))
	}
	if resp.ContentLength != 5 {
		t.Fatalf("Content-Length = %d; want 5", resp.ContentLength)
	}
	if !resp.Close {
		t.Fatal("expected Connection: close")
	}
}

func TestResponseBuilders(t *testing.T) {
	tests := []struct {
		name string
		b    *ResponseBuilder
		code int
		line string
	}{
		{"success", Success(), 200, "HTTP/1.1 200 OK\r\n"},
		{"bad request", BadRequest(), 400, "HTTP/1.1 400 Bad Request\r\n"},
		{"not found", NotFound(), 404, "HTTP/1.1 404 Not Found\r\n"},
		{"unavailable", ServiceUnavailable(), 503, "HTTP/1.1 503 Service Unavailable\r\n"},
		{"internal", InternalError(), 500, "HTTP/1.1 500 Internal Server Error\r\n"},
		{"custom", NewResponse().Status(599), 599, "HTTP/1.1 599 Status 599\r\n"},
	}
	for _, tc := range tests {
		r := tc.b.Build()
		if r.StatusCode != tc.code {
			t.Fatalf("%s: status = %d; want %d", tc.name, r.StatusCode, tc.code)
		}
		if got := string(r.Bytes()); !strings.HasPrefix(got, tc.line) {
			t.Fatalf("%s: status line = %q; want prefix %q", tc.name, got, tc.line)
		}
	}
}

func TestBuildCopiesHeaders(t *testing.T) {
	b := Success().Header("A", "1")
	first := b.Build()
	b.Header("B", "2")

	if len(first.Headers) != 1 {
		t.Fatalf("built response changed after builder reuse: %v", first.Headers)
	}
}
