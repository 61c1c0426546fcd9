package handler

import (
	"net/http"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// Response collects a handler's status, headers and body. Nothing reaches
// the client until the handler returns.
type Response struct {
	status  int
	headers Headers
	body    maybeutf8.Buffer
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{status: http.StatusOK}
}

// SetStatus sets the status code.
func (r *Response) SetStatus(code int) {
	r.status = code
}

// Status returns the status code.
func (r *Response) Status() int {
	return r.status
}

// Headers returns the response headers for modification.
func (r *Response) Headers() *Headers {
	return &r.headers
}

// Send appends the octets of o to the body.
func (r *Response) Send(o maybeutf8.Octets) {
	r.body.PushBytes(o.Bytes())
}

// Write appends p to the body. It implements io.Writer.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// Body returns the body accumulated so far.
func (r *Response) Body() *maybeutf8.Buffer {
	return &r.body
}

func (r *Response) writeTo(w http.ResponseWriter) error {
	r.headers.writeTo(w.Header())
	w.WriteHeader(r.status)
	_, err := r.body.WriteTo(w)
	return err
}
