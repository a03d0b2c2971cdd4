// Package client talks to the territory HTTP API. It backs the plzctl admin CLI.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"plz-territory-go/pkg/model"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ErrNotLoggedIn is returned by admin calls made before Login
var ErrNotLoggedIn = errors.New("not logged in")

type errorBody struct {
	Error string `json:"error"`
}

// Client is a territory API client. Admin calls need a prior Login.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
	token      string
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Login exchanges the admin password for a session token
func (c *Client) Login(ctx context.Context, password string) error {
	var resp model.LoginResponse
	if err := c.call(c.httpClient.R().SetContext(ctx).
		SetBody(model.AdminCredentials{Password: password}).
		SetResult(&resp), http.MethodPost, "/api/login"); err != nil {
		return err
	}
	c.token = resp.Token
	c.logger.Debug("Logged in", zap.Int64("expires_at", resp.ExpiresAt))
	return nil
}

// Representatives returns all representative names
func (c *Client) Representatives(ctx context.Context) ([]string, error) {
	var resp struct {
		Representatives []string `json:"representatives"`
	}
	err := c.call(c.httpClient.R().SetContext(ctx).SetResult(&resp), http.MethodGet, "/api/representatives")
	return resp.Representatives, err
}

// RegionsFor returns the codes held by a representative
func (c *Client) RegionsFor(ctx context.Context, name string) ([]string, error) {
	var resp model.RegionListResponse
	err := c.call(c.httpClient.R().SetContext(ctx).
		SetPathParam("name", name).
		SetResult(&resp), http.MethodGet, "/api/representatives/{name}/regions")
	return resp.Regions, err
}

// UnassignedRegions returns the codes without a representative
func (c *Client) UnassignedRegions(ctx context.Context) ([]string, error) {
	var resp model.RegionListResponse
	err := c.call(c.httpClient.R().SetContext(ctx).SetResult(&resp), http.MethodGet, "/api/regions/unassigned")
	return resp.Regions, err
}

// Legend returns the map legend
func (c *Client) Legend(ctx context.Context) ([]model.LegendEntry, error) {
	var resp []model.LegendEntry
	err := c.call(c.httpClient.R().SetContext(ctx).SetResult(&resp), http.MethodGet, "/api/legend")
	return resp, err
}

// Assign gives regions to a representative
func (c *Client) Assign(ctx context.Context, name string, codes []string) (*model.AssignResult, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return nil, err
	}
	var resp model.AssignResult
	err = c.call(req.SetBody(model.AssignRequest{Representative: name, Regions: codes}).SetResult(&resp),
		http.MethodPost, "/api/admin/assignments")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRegions replaces the region set of a representative
func (c *Client) SetRegions(ctx context.Context, name string, codes []string) (*model.AssignResult, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return nil, err
	}
	var resp model.AssignResult
	err = c.call(req.SetPathParam("name", name).
		SetBody(model.RegionListRequest{Regions: codes}).
		SetResult(&resp), http.MethodPut, "/api/admin/representatives/{name}/regions")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unassign clears the owner of the listed regions
func (c *Client) Unassign(ctx context.Context, codes []string) (int, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Unassigned int `json:"unassigned"`
	}
	err = c.call(req.SetBody(model.RegionListRequest{Regions: codes}).SetResult(&resp),
		http.MethodPost, "/api/admin/regions/unassign")
	return resp.Unassigned, err
}

// Rename renames a representative
func (c *Client) Rename(ctx context.Context, oldName, newName string) (*model.Representative, error) {
	return c.update(ctx, oldName, model.RepresentativeUpdateRequest{Name: &newName})
}

// SetColor changes a representative's color
func (c *Client) SetColor(ctx context.Context, name, color string) (*model.Representative, error) {
	return c.update(ctx, name, model.RepresentativeUpdateRequest{Color: &color})
}

// Delete removes a representative; deleted is false when the name was unknown
func (c *Client) Delete(ctx context.Context, name string) (bool, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return false, err
	}
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	err = c.call(req.SetPathParam("name", name).SetResult(&resp),
		http.MethodDelete, "/api/admin/representatives/{name}")
	return resp.Deleted, err
}

// Seed re-runs region seeding from the server's boundary data
func (c *Client) Seed(ctx context.Context) (*model.SeedResponse, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return nil, err
	}
	var resp model.SeedResponse
	if err := c.call(req.SetResult(&resp), http.MethodPost, "/api/admin/seed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export downloads the assignment workbook
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get("/api/admin/export")
	if err != nil {
		return nil, fmt.Errorf("failed to call export: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return resp.Body(), nil
}

func (c *Client) update(ctx context.Context, name string, body model.RepresentativeUpdateRequest) (*model.Representative, error) {
	req, err := c.admin(ctx)
	if err != nil {
		return nil, err
	}
	var resp model.Representative
	err = c.call(req.SetPathParam("name", name).SetBody(body).SetResult(&resp),
		http.MethodPatch, "/api/admin/representatives/{name}")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) admin(ctx context.Context) (*resty.Request, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	return c.httpClient.R().SetContext(ctx).SetAuthToken(c.token), nil
}

func (c *Client) call(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("API call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

func apiError(resp *resty.Response) error {
	msg := resp.Status()
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}
