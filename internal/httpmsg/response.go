package httpmsg

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// Header is a single response header field.
type Header struct {
	Name  string
	Value string
}

// Response is a complete response ready to be rendered.
type Response struct {
	StatusCode int
	Headers    []Header
	Body       string
}

// ResponseBuilder assembles a Response step by step.
type ResponseBuilder struct {
	resp Response
}

// NewResponse starts a 200 response with no headers and an empty body.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{resp: Response{StatusCode: http.StatusOK}}
}

func Success() *ResponseBuilder { return NewResponse() }

func BadRequest() *ResponseBuilder { return NewResponse().Status(http.StatusBadRequest) }

func NotFound() *ResponseBuilder { return NewResponse().Status(http.StatusNotFound) }

func ServiceUnavailable() *ResponseBuilder {
	return NewResponse().Status(http.StatusServiceUnavailable)
}

func InternalError() *ResponseBuilder {
	return NewResponse().Status(http.StatusInternalServerError)
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.resp.StatusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.resp.Headers = append(b.resp.Headers, Header{Name: name, Value: value})
	return b
}

func (b *ResponseBuilder) Body(body string) *ResponseBuilder {
	b.resp.Body = body
	return b
}

// Build returns a copy of the response; the builder stays usable.
func (b *ResponseBuilder) Build() Response {
	r := b.resp
	r.Headers = append([]Header(nil), b.resp.Headers...)
	return r
}

// Bytes renders the response. Content-Length and Connection: close are
// added unless already present.
func (r Response) Bytes() []byte {
	var buf bytes.Buffer

	reason := http.StatusText(r.StatusCode)
	if reason == "" {
		reason = "Status " + strconv.Itoa(r.StatusCode)
	}
	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.StatusCode))
	buf.WriteByte(' ')
	buf.WriteString(reason)
	buf.WriteString("\r\n")

	var hasLength, hasConn, hasType bool
	for _, h := range r.Headers {
		switch http.CanonicalHeaderKey(h.Name) {
		case "Content-Length":
			hasLength = true
		case "Connection":
			hasConn = true
		case "Content-Type":
			hasType = true
		}
		writeHeader(&buf, h.Name, h.Value)
	}
	if !hasType && r.Body != "" {
		writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
	}
	if !hasLength {
		writeHeader(&buf, "Content-Length", strconv.Itoa(len(r.Body)))
	}
	if !hasConn {
		writeHeader(&buf, "Connection", "close")
	}
	buf.WriteString("\r\n")
	buf.WriteString(r.Body)

	return buf.Bytes()
}

// WriteTo writes the rendered response to w.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
