// Package apiclient is the HTTP surface of the Clax API. Credentials are
// httpOnly cookies managed by a cookie jar, so every call carries them
// automatically.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Routes that must never trigger an access-token renewal when they fail
// with a 401, see the unauthorized-retry transport.
const LoginRoute = "/login"
const RefreshAccessTokenRoute = "/refresh/access-token"
const RefreshRefreshTokenRoute = "/refresh/refresh-token"

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type ClientOption func(*Client) error

func WithBaseURL(baseURL *url.URL) ClientOption {
	return func(c *Client) error {
		if baseURL == nil || baseURL.Host == "" {
			return fmt.Errorf("the base URL cannot be empty")
		}
		c.baseURL = baseURL
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = httpClient
		return nil
	}
}

func NewClient(options ...ClientOption) (*Client, error) {
	client := Client{}
	for _, opt := range options {
		err := opt(&client)
		if err != nil {
			return nil, err
		}
	}
	if client.baseURL == nil {
		return nil, fmt.Errorf("the base URL is not initialized")
	}
	if client.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client.httpClient = &http.Client{Jar: jar}
	}
	return &client, nil
}

// WrapTransport installs a transport decorator, e.g. the unauthorized-retry
// transport, around the client's current transport.
func (c *Client) WrapTransport(wrap func(http.RoundTripper) http.RoundTripper) {
	transport := c.httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	c.httpClient.Transport = wrap(transport)
}

// do sends one JSON request and decodes a success body into out (ignored
// when out is nil). Any non-2xx response is returned as an *APIError. The
// request ID is set here so a replay of the request keeps the same ID.
func (c *Client) do(ctx context.Context, method string, route string, body any, out any) error {
	var requestBody *bytes.Reader = bytes.NewReader(nil)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		requestBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(route).String(), requestBody)
	if err != nil {
		return err
	}
	req.Header.Set(echo.HeaderXRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp)
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cannot decode the response of %s %s: %w", method, route, err)
	}
	return nil
}
