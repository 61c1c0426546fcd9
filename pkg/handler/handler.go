// Package handler is the request/response layer that carries protocol
// data as maybeutf8 values.
//
// A Handler receives a Context, whose path segments, header values, query
// pairs and body are each classified as text or raw octets, and fills in a
// Response. HTTP adapts a Handler to net/http.
package handler

// Handler handles a single request. Panicking inside HandleRequest is
// discouraged; the server recovers, but the client gets a bare 500.
type Handler interface {
	HandleRequest(ctx *Context, resp *Response)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx *Context, resp *Response)

// HandleRequest calls f(ctx, resp).
func (f HandlerFunc) HandleRequest(ctx *Context, resp *Response) {
	f(ctx, resp)
}
