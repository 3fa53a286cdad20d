package users

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// User mirrors the users-api record; the service is otherwise opaque
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrNotFound reports a 404 from the users-api, i.e. the user id does
// not resolve. Any other failure is an upstream fault.
var ErrNotFound = errors.New("user not found")

// Client calls the external users-api. A zero timeout leaves the request
// unbounded, which is the historical behavior of this service.
type Client struct {
	baseurl string
	timeout time.Duration
}

func NewClient(baseurl string, timeout time.Duration) *Client {
	return &Client{baseurl: strings.TrimRight(baseurl, "/"), timeout: timeout}
}

// Get fetches a single user by id. 200 yields the user, 404 yields
// ErrNotFound, everything else (transport faults included) is an error.
func (c *Client) Get(ctx context.Context, id string) (*User, error) {
	var (
		code int
		body []byte
	)

	req := gout.GET(fmt.Sprintf("%s/users/%s", c.baseurl, url.PathEscape(id))).
		WithContext(ctx).
		Code(&code).
		BindBody(&body)
	if c.timeout > 0 {
		req = req.SetTimeout(c.timeout)
	}
	if err := req.Do(); err != nil {
		return nil, errors.Wrap(err, "users-api request failed")
	}

	switch {
	case code == 404:
		return nil, ErrNotFound
	case code < 200 || code > 299:
		return nil, errors.Errorf("users-api returned status %d", code)
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, errors.Wrap(err, "users-api returned malformed body")
	}
	return &u, nil
}

// Ping probes the users-api health endpoint
func (c *Client) Ping(ctx context.Context) error {
	var code int
	req := gout.GET(c.baseurl + "/health").WithContext(ctx).Code(&code)
	if c.timeout > 0 {
		req = req.SetTimeout(c.timeout)
	}
	if err := req.Do(); err != nil {
		return errors.Wrap(err, "users-api unreachable")
	}
	if code < 200 || code > 299 {
		return errors.Errorf("users-api health returned status %d", code)
	}
	return nil
}
