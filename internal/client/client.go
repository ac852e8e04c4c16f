// Package client provides an HTTP client for the realty REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/message"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/paging"
	"github.com/evcraddock/realty/internal/property"
)

// Client is an HTTP client for the realty API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for anonymous calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// LoginResponse is the response from POST /api/auth/login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      account.DTO `json:"user"`
}

// ListOptions controls filtering for ListProperties. Zero values are omitted.
type ListOptions struct {
	SearchTerm  string
	City        string
	Type        string
	Status      string
	Transaction string
	MinPrice    float64
	MaxPrice    float64
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("searchTerm", o.SearchTerm)
	set("city", o.City)
	set("type", o.Type)
	set("status", o.Status)
	set("transaction", o.Transaction)
	set("sortBy", o.SortBy)
	set("sortOrder", o.SortOrder)
	if o.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatFloat(o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatFloat(o.MaxPrice, 'f', -1, 64))
	}
	if o.Page > 0 {
		v.Set("pageNumber", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	return v
}

// Health checks that the server is up.
func (c *Client) Health() error {
	return c.get("/health", nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.send(http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me() (*account.DTO, error) {
	var u account.DTO
	if err := c.get("/api/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProperties returns one page of listings matching opts.
func (c *Client) ListProperties(opts ListOptions) (*paging.Result[property.DTO], error) {
	var res paging.Result[property.DTO]
	if err := c.get(withQuery("/api/properties", opts.values()), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetProperty returns a property with its images.
func (c *Client) GetProperty(id int64) (*property.DTO, error) {
	var p property.DTO
	if err := c.get(fmt.Sprintf("/api/properties/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPropertyStatus moves a listing to status.
func (c *Client) SetPropertyStatus(id int64, status models.PropertyStatus) error {
	body := map[string]int{"status": int(status)}
	return c.send(http.MethodPut, fmt.Sprintf("/api/properties/%d/status", id), body, nil)
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(id int64) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/api/properties/%d", id), nil, nil)
}

// Inbox returns one page of received messages.
func (c *Client) Inbox(page, pageSize int) (*paging.Result[message.DTO], error) {
	v := url.Values{}
	if page > 0 {
		v.Set("pageNumber", strconv.Itoa(page))
	}
	if pageSize > 0 {
		v.Set("pageSize", strconv.Itoa(pageSize))
	}
	var res paging.Result[message.DTO]
	if err := c.get(withQuery("/api/messages/inbox", v), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UnreadCount returns the number of unread received messages.
func (c *Client) UnreadCount() (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.get("/api/messages/unread-count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// ListInquiries returns inquiries on the caller's listings, or every
// inquiry for admins. With mine set it returns the inquiries the caller sent.
func (c *Client) ListInquiries(status string, mine bool) (*paging.Result[inquiry.DTO], error) {
	path := "/api/inquiries"
	if mine {
		path += "/mine"
	}
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	var res paging.Result[inquiry.DTO]
	if err := c.get(withQuery(path, v), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result any) error {
	return c.send(http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return responseError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func responseError(code int, body []byte) *Error {
	var errResp struct {
		Error  string            `json:"error"`
		Errors map[string]string `json:"errors"`
	}
	msg := strings.ToLower(http.StatusText(code))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
		if len(errResp.Errors) > 0 {
			fields := make([]string, 0, len(errResp.Errors))
			for field, m := range errResp.Errors {
				fields = append(fields, field+": "+m)
			}
			slices.Sort(fields)
			msg += " (" + strings.Join(fields, "; ") + ")"
		}
	}
	return &Error{StatusCode: code, Message: msg}
}
