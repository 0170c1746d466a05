// Package gitlab protects branches and tags of module repositories through
// the GitLab REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Access levels accepted by the protection endpoints.
const (
	DeveloperAccess  = 30
	MaintainerAccess = 40
)

// Client talks to one GitLab instance. In simulate mode no request that
// changes state is sent; the intended change is logged instead.
type Client struct {
	baseURL  string
	token    string
	simulate bool
	client   *http.Client
	logger   *log.Logger
}

// NewClient creates a client for the instance at baseURL.
func NewClient(baseURL, token string, simulate bool, logger *log.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		simulate: simulate,
		client:   &http.Client{},
		logger:   logger,
	}
}

// ProtectedBranch is the API representation of a protected branch.
type ProtectedBranch struct {
	Name string `json:"name"`
}

// ProtectedTag is the API representation of a protected tag.
type ProtectedTag struct {
	Name string `json:"name"`
}

// Project holds the project fields used here.
type Project struct {
	Name          string `json:"name"`
	HTTPURLToRepo string `json:"http_url_to_repo"`
}

// ProtectBranch replaces any existing protection of branch (a name or
// wildcard) in project with the given push and merge access levels.
func (c *Client) ProtectBranch(ctx context.Context, project, branch string, pushLevel, mergeLevel int) (*ProtectedBranch, error) {
	if project == "" || branch == "" {
		return nil, fmt.Errorf("project and branch are required")
	}
	if c.simulate {
		c.logger.Info("Branch would have been protected", "project", project, "branch", branch)
		return nil, nil
	}

	base := c.projectPath(project) + "/protected_branches"
	removed, err := c.unprotect(ctx, base+"/"+url.PathEscape(branch))
	if err != nil {
		return nil, err
	}
	if removed {
		c.logger.Info("Existing protected branch unprotected", "project", project, "branch", branch)
	}

	c.logger.Info("Protecting the branch", "project", project, "branch", branch)
	form := url.Values{}
	form.Set("name", branch)
	form.Set("push_access_level", strconv.Itoa(pushLevel))
	form.Set("merge_access_level", strconv.Itoa(mergeLevel))

	var pb ProtectedBranch
	if err := c.do(ctx, http.MethodPost, base, form, &pb); err != nil {
		return nil, fmt.Errorf("protecting branch %s: %w", branch, err)
	}
	return &pb, nil
}

// ProtectTag replaces any existing protection of tag (a name or wildcard)
// in project.
func (c *Client) ProtectTag(ctx context.Context, project, tag string) (*ProtectedTag, error) {
	if project == "" || tag == "" {
		return nil, fmt.Errorf("project and tag are required")
	}
	if c.simulate {
		c.logger.Info("Tag would have been protected", "project", project, "tag", tag)
		return nil, nil
	}

	base := c.projectPath(project) + "/protected_tags"
	removed, err := c.unprotect(ctx, base+"/"+url.PathEscape(tag))
	if err != nil {
		return nil, err
	}
	if removed {
		c.logger.Info("Existing protected tag unprotected", "project", project, "tag", tag)
	}

	c.logger.Info("Protecting the tag", "project", project, "tag", tag)
	form := url.Values{}
	form.Set("name", tag)

	var pt ProtectedTag
	if err := c.do(ctx, http.MethodPost, base, form, &pt); err != nil {
		return nil, fmt.Errorf("protecting tag %s: %w", tag, err)
	}
	return &pt, nil
}

// ProjectURL returns the HTTP clone URL of project.
func (c *Client) ProjectURL(ctx context.Context, project string) (string, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, c.projectPath(project), nil, &p); err != nil {
		return "", fmt.Errorf("looking up project %s: %w", project, err)
	}
	return p.HTTPURLToRepo, nil
}

func (c *Client) projectPath(project string) string {
	return fmt.Sprintf("%s/api/v4/projects/%s", c.baseURL, url.PathEscape(project))
}

// unprotect deletes a protection rule. A missing rule is not an error.
func (c *Client) unprotect(ctx context.Context, endpoint string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, endpoint, nil, nil)
	if err == nil {
		return true, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("removing existing protection: %w", err)
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GitLab API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("GitLab API error: HTTP %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, endpoint string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("querying GitLab: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message interface{} `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if msg.Message != nil {
			apiErr.Message = fmt.Sprint(msg.Message)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
