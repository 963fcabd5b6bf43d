// Package outbound is the JSON-over-HTTP client used for third-party APIs (email vendors, the
// hosted identity provider). Calls go through a circuit breaker and are never retried.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("upstream temporarily unavailable")

var errServerStatus = errors.New("upstream server error")

// Request describes one call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{} // encoded as JSON when non-nil
}

// Response is the raw upstream answer.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client performs Requests with fiber's fasthttp-backed Agent.
type Client struct {
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[Response]
}

// New creates a client named name (used in breaker state logs). After five consecutive failures
// the breaker opens for thirty seconds.
func New(name string, timeout time.Duration, onStateChange func(name string, from, to gobreaker.State)) *Client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: onStateChange,
	}
	return &Client{
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[Response](settings),
	}
}

// Do sends req. Non-2xx responses are returned without error so callers can read the upstream
// message; only transport failures and an open breaker produce an error.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	resp, err := c.breaker.Execute(func() (Response, error) {
		resp, err := c.send(req)
		if err != nil {
			return Response{}, err
		}
		if resp.Status >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	switch {
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return Response{}, fmt.Errorf("%w: %s", ErrUnavailable, c.breaker.Name())
	case err != nil:
		return Response{}, err
	}
	return resp, nil
}

func (c *Client) send(req Request) (Response, error) {
	a := fiber.AcquireAgent()
	r := a.Request()
	r.Header.SetMethod(req.Method)
	r.SetRequestURI(req.URL)
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	if req.Body != nil {
		a.JSON(req.Body)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return Response{}, fmt.Errorf("invalid request to %s: %w", req.URL, err)
	}
	a.Timeout(c.timeout)

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return Response{}, fmt.Errorf("%s %s failed: %w", req.Method, req.URL, errors.Join(errs...))
	}
	return Response{Status: status, Body: body}, nil
}
