package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/timeconv"
)

// Credentials authenticate against Toggl. APIToken wins when set.
type Credentials struct {
	APIToken string
	Email    string
	Password string
}

// Client implements ports.TogglClient using the Toggl Track API v9.
type Client struct {
	baseURL string
	auth    string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL string, creds Credentials, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	// Basic auth: token:api_token, or email:password
	user, pass := creds.APIToken, "api_token"
	if creds.APIToken == "" {
		user, pass = creds.Email, creds.Password
	}
	var auth string
	if user != "" {
		auth = base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", user, pass)))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// ListTimeEntries fetches the user's recent entries.
// Toggl v9: GET /api/v9/me/time_entries
func (c *Client) ListTimeEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	var raw []rawTimeEntry
	if _, err := c.do(ctx, http.MethodGet, "/me/time_entries", nil, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// CurrentTimeEntry returns the running entry, or nil when Toggl answers null.
func (c *Client) CurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error) {
	var raw *rawTimeEntry
	if _, err := c.do(ctx, http.MethodGet, "/me/time_entries/current", nil, nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	e := raw.toDomain()
	return &e, nil
}

func (c *Client) CreateTimeEntry(ctx context.Context, workspaceID int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	body := writeBody{TimeEntryInput: in, CreatedWith: domain.CreatedWith, WorkspaceID: workspaceID}
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries", workspaceID)
	if _, err := c.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

// UpdateTimeEntry sends only the fields set on in.
func (c *Client) UpdateTimeEntry(ctx context.Context, workspaceID, id int64, in domain.TimeEntryInput) (domain.TimeEntry, error) {
	body := writeBody{TimeEntryInput: in, CreatedWith: domain.CreatedWith}
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, id)
	if _, err := c.do(ctx, http.MethodPut, path, nil, body, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) StopTimeEntry(ctx context.Context, workspaceID, id int64) (domain.TimeEntry, error) {
	var raw rawTimeEntry
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d/stop", workspaceID, id)
	if _, err := c.do(ctx, http.MethodPatch, path, nil, nil, &raw); err != nil {
		return domain.TimeEntry{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) DeleteTimeEntry(ctx context.Context, workspaceID, id int64) (int, error) {
	path := fmt.Sprintf("/workspaces/%d/time_entries/%d", workspaceID, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	_, err := c.do(ctx, http.MethodGet, "/me", nil, nil, &u)
	return u, err
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	var ws []domain.Workspace
	_, err := c.do(ctx, http.MethodGet, "/me/workspaces", nil, nil, &ws)
	return ws, err
}

// ListProjects fetches one page of a workspace's projects.
func (c *Client) ListProjects(ctx context.Context, workspaceID int64, opts domain.ProjectListOptions) ([]domain.Project, error) {
	q := url.Values{}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.ActiveOnly {
		q.Set("active", "true")
	}
	var raw []rawProject
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	if _, err := c.do(ctx, http.MethodGet, path, q, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, workspaceID int64, in domain.ProjectInput) (domain.Project, error) {
	var raw rawProject
	path := fmt.Sprintf("/workspaces/%d/projects", workspaceID)
	if _, err := c.do(ctx, http.MethodPost, path, nil, in, &raw); err != nil {
		return domain.Project{}, err
	}
	return raw.toDomain(), nil
}

func (c *Client) DeleteProject(ctx context.Context, workspaceID, id int64) (int, error) {
	path := fmt.Sprintf("/workspaces/%d/projects/%d", workspaceID, id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// PatchProjects applies ops to several projects in one request. Toggl
// answers with a per-project success/failure document that is passed through.
func (c *Client) PatchProjects(ctx context.Context, workspaceID int64, ids []int64, ops []domain.PatchOperation) (json.RawMessage, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	var out json.RawMessage
	path := fmt.Sprintf("/workspaces/%d/projects/%s", workspaceID, strings.Join(parts, ","))
	if _, err := c.do(ctx, http.MethodPatch, path, nil, ops, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one API call under /api/v9 and decodes a JSON response into out
// when out is non-nil. It returns the HTTP status on success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	if c.auth == "" {
		return 0, domain.Errorf(domain.CodeValidation, "missing Toggl credentials: set an API token or email and password")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, err
	}
	u.Path = "/api/v9" + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Basic "+c.auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, domain.Wrap(domain.CodeBackend, err, "toggl: request failed")
	}
	defer resp.Body.Close()
	c.log.Debug("toggl request",
		slog.String("method", method),
		slog.String("path", u.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, statusError(resp.StatusCode, b)
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, domain.Wrap(domain.CodeBackend, err, "toggl: decode response")
	}
	return resp.StatusCode, nil
}

func statusError(status int, body []byte) *domain.Error {
	var msg string
	switch status {
	case http.StatusForbidden:
		msg = "User does not have access to this resource."
	case http.StatusNotFound:
		msg = "Resource not found."
	case http.StatusInternalServerError:
		msg = "Internal Server Error"
	default:
		msg = fmt.Sprintf("HTTP error: %d", status)
		if text := strings.TrimSpace(string(body)); text != "" {
			msg += ": " + text
		}
	}
	return &domain.Error{Code: domain.CodeBackend, Message: msg, Status: status}
}

// writeBody adds the fields Toggl needs on every write.
type writeBody struct {
	domain.TimeEntryInput
	CreatedWith string `json:"created_with"`
	WorkspaceID int64  `json:"workspace_id,omitempty"`
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description *string    `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	WorkspaceID int64      `json:"workspace_id"`
	Tags        []string   `json:"tags"`
	Start       *time.Time `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    *int64     `json:"duration"`
	Billable    bool       `json:"billable"`
	CreatedWith string     `json:"created_with"`
}

// toDomain canonicalises timestamps so that they compare lexically.
func (r rawTimeEntry) toDomain() domain.TimeEntry {
	e := domain.TimeEntry{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		WorkspaceID: r.WorkspaceID,
		Tags:        r.Tags,
		Duration:    r.Duration,
		Billable:    r.Billable,
		CreatedWith: r.CreatedWith,
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Start != nil {
		e.Start = timeconv.FormatUTC(*r.Start)
	}
	if r.Stop != nil {
		e.Stop = timeconv.FormatUTC(*r.Stop)
	}
	return e
}

type rawProject struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	Private     bool      `json:"is_private"`
	Billable    *bool     `json:"billable"`
	Color       string    `json:"color"`
	ClientID    *int64    `json:"client_id"`
	At          time.Time `json:"at"`
}

func (p rawProject) toDomain() domain.Project {
	return domain.Project{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Active:      p.Active,
		Private:     p.Private,
		Billable:    p.Billable != nil && *p.Billable,
		Color:       p.Color,
		ClientID:    p.ClientID,
		At:          p.At,
	}
}
