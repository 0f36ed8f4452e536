package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"iam/internal/iam/model"
)

// IAMClient lets sibling services ask the IAM service about the bearer of a token.
type IAMClient struct {
	baseURL    string
	httpClient *http.Client
}

// StatusError is returned for any non-200 answer.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("iam request failed with status: %d", e.Status)
	}
	return fmt.Sprintf("iam request failed with status %d: %s", e.Status, e.Message)
}

func NewIAMClient(baseURL string, httpClient *http.Client) *IAMClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &IAMClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Me returns the effective profile of the token's owner.
func (c *IAMClient) Me(ctx context.Context, token string) (*model.MeResponse, error) {
	var me model.MeResponse
	if err := c.get(ctx, token, "/me", &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// HasPermission reports whether the token's owner currently holds code, permanently or temporarily.
func (c *IAMClient) HasPermission(ctx context.Context, token, code string) (bool, error) {
	me, err := c.Me(ctx, token)
	if err != nil {
		return false, err
	}
	return slices.Contains(me.Permissions.Combined, code), nil
}

// LookupUser resolves an email or username. The token needs USER_READ.
func (c *IAMClient) LookupUser(ctx context.Context, token, identifier string) (*model.LookupUserResp, error) {
	var resp model.LookupUserResp
	path := "/users/lookup?" + url.Values{"identifier": {identifier}}.Encode()
	if err := c.get(ctx, token, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *IAMClient) get(ctx context.Context, token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Status: resp.StatusCode}
		var body model.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			se.Code = body.Error.Code
			se.Message = body.Error.Message
		}
		return se
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
