// Package canvas provides the Canvas LMS API client used by the fetch stage.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// coursesPerPage and assignmentsPerPage match the page sizes the sync has
// always requested from Canvas.
const (
	coursesPerPage     = 100
	assignmentsPerPage = 50
)

// Course is one active enrollment returned by the courses endpoint.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assignment is one raw assignment payload. DueAt and UnlockAt are nullable in
// the API, so they stay pointers until the completeness filter runs.
type Assignment struct {
	Name        string  `json:"name"`
	HTMLURL     string  `json:"html_url"`
	DueAt       *string `json:"due_at"`
	UnlockAt    *string `json:"unlock_at"`
	Description string  `json:"description"`
	CourseName  string  `json:"-"`
}

// Error represents a failure talking to the Canvas API.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("canvas error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("canvas error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client talks to one Canvas instance with a bearer token.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	parallelism int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithParallelism bounds concurrent per-course assignment requests.
func WithParallelism(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// NewClient creates a Canvas client for the given base URL and access token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		parallelism: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs one authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Error{URL: rawURL, Message: "invalid request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{URL: rawURL, Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{URL: rawURL, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// ListActiveCourses returns the courses the token's user is actively enrolled in.
func (c *Client) ListActiveCourses(ctx context.Context) ([]Course, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(coursesPerPage))
	q.Set("enrollment_state", "active")

	var courses []Course
	coursesURL := fmt.Sprintf("%s/api/v1/courses?%s", c.baseURL, q.Encode())
	if err := c.getJSON(ctx, coursesURL, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListAssignments returns the unsubmitted assignments of one course, ordered
// by due date.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	q := url.Values{}
	q.Set("bucket", "unsubmitted")
	q.Set("order_by", "due_at")
	q.Set("per_page", strconv.Itoa(assignmentsPerPage))

	var assignments []Assignment
	assignmentsURL := fmt.Sprintf("%s/api/v1/courses/%d/assignments?%s", c.baseURL, courseID, q.Encode())
	if err := c.getJSON(ctx, assignmentsURL, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// FetchAll retrieves the unsubmitted assignments of every active course.
func (c *Client) FetchAll(ctx context.Context) ([]Assignment, []string, error) {
	courses, err := c.ListActiveCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch courses: %w", err)
	}
	return c.FetchCourses(ctx, courses)
}

// FetchCourses retrieves the unsubmitted assignments of the given courses,
// tagging each with its course name and reducing the HTML description to a
// plain-text excerpt. Per-course failures are skipped and reported as
// warnings; results keep course order regardless of fetch interleaving.
func (c *Client) FetchCourses(ctx context.Context, courses []Course) ([]Assignment, []string, error) {
	perCourse := make([][]Assignment, len(courses))
	warnings := make([]string, len(courses))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, course := range courses {
		i, course := i, course
		g.Go(func() error {
			if course.ID == 0 {
				return nil
			}
			assignments, err := c.ListAssignments(gCtx, course.ID)
			if err != nil {
				warnings[i] = fmt.Sprintf("skipping course %q: %v", course.Name, err)
				return nil
			}
			name := course.Name
			if name == "" {
				name = "Unknown Course"
			}
			for j := range assignments {
				assignments[j].CourseName = name
				assignments[j].Description = Excerpt(assignments[j].Description, descriptionExcerptLen)
			}
			perCourse[i] = assignments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []Assignment
	var reported []string
	for i := range courses {
		all = append(all, perCourse[i]...)
		if warnings[i] != "" {
			reported = append(reported, warnings[i])
		}
	}
	return all, reported, nil
}
