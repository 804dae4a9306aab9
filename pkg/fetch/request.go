package fetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrBodyNotAllowed = errors.New("request with GET/HEAD method cannot have body")
	ErrInvalidURL     = errors.New("invalid request url")
)

// Request is an immutable-by-convention request handed to the auth engine.
type Request struct {
	Method string
	URL    *url.URL
	Header Headers
	Body   []byte
}

// NewRequest validates method, url and body the way a Fetch Request
// constructor does. A nil or empty body means no body.
func NewRequest(method, rawURL string, header Headers, body []byte) (*Request, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}
	if len(body) == 0 {
		body = nil
	}
	if body != nil && (method == http.MethodGet || method == http.MethodHead) {
		return nil, ErrBodyNotAllowed
	}
	return &Request{Method: method, URL: u, Header: header, Body: body}, nil
}

func (r *Request) HasBody() bool {
	return r.Body != nil
}

func (r *Request) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v.
func (r *Request) JSON(v any) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(bytes.NewReader(r.Body)).Decode(v)
}

// Response is what the auth engine returns. Body is nil when the response
// has no body; it may fail mid-read like any stream.
type Response struct {
	Status int
	Header Headers
	Body   io.Reader
}

func NewResponse(status int, header Headers, body []byte) *Response {
	resp := &Response{Status: status, Header: header}
	if body != nil {
		resp.Body = bytes.NewReader(body)
	}
	return resp
}

// NewJSONResponse encodes v and sets the content type.
func NewJSONResponse(status int, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var h Headers
	h.Set("Content-Type", "application/json")
	return NewResponse(status, h, data), nil
}

func (r *Response) HasBody() bool {
	return r.Body != nil
}

// Text drains the body. It returns "" when there is no body.
func (r *Response) Text() (string, error) {
	if r.Body == nil {
		return "", nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
