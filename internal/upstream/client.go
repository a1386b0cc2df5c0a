package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/fwmsg/aufgaben-web/internal/config"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
)

// APIError is a non-success answer of the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend status %d", e.Status)
	}
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if ae, ok := errors.Cause(err).(*APIError); ok {
		return ae.Status
	}
	return 0
}

// Client talks to the backend API. One Client serves all users.
type Client struct {
	cfg  *config.Config
	http *http.Client
	base *url.URL
	sf   singleflight.Group
}

func NewClient(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Upstream.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "upstream base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("upstream base url %q must be absolute", cfg.Upstream.BaseURL)
	}
	timeout := cfg.Upstream.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}, base: base}, nil
}

// Result is the generic {success, message, error} answer of ajax endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), rd)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.cfg.Upstream.CSRFToken; tok != "" {
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: tok})
		if method != http.MethodGet {
			req.Header.Set("X-CSRFToken", tok)
		}
	}
	if s := c.cfg.Upstream.SessionCookie; s != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: s})
	}
	return req, nil
}

// send executes req and returns the body of a 2xx answer. Other answers
// become an *APIError carrying the backend's error text.
func (c *Client) send(req *http.Request) ([]byte, error) {
	start := time.Now()
	path := req.URL.Path
	applog.Debugf("upstream %s %s id=%s", req.Method, req.URL, req.Header.Get("X-Request-ID"))
	resp, err := c.http.Do(req)
	if err != nil {
		applog.Warnf("upstream %s %s failed: %v", req.Method, path, err)
		return nil, errors.Wrapf(err, "%s %s", req.Method, path)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	applog.Debugf("upstream %s %s -> %d in %s", req.Method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 300 {
		var r Result
		_ = json.Unmarshal(data, &r)
		msg := r.Error
		if msg == "" {
			msg = r.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		applog.Warnf("upstream %s %s status=%d error=%q", req.Method, path, resp.StatusCode, msg)
		return nil, errors.WithStack(&APIError{Status: resp.StatusCode, Message: msg})
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any, out any) error {
	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	data, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// mutate posts a JSON body and treats success=false as an error.
func (c *Client) mutate(ctx context.Context, path string, body any) (Result, error) {
	var r Result
	if err := c.do(ctx, http.MethodPost, path, nil, body, &r); err != nil {
		return r, err
	}
	if !r.Success {
		msg := r.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: msg})
	}
	return r, nil
}

// LoadSnapshot fetches the table data for sel. Concurrent calls with the
// same selection share one backend request; the shared request is detached
// from the caller that started it, so a disconnecting caller only cancels
// its own wait.
func (c *Client) LoadSnapshot(ctx context.Context, sel matrix.Selection) (*matrix.Snapshot, error) {
	ch := c.sf.DoChan(sel.Key(), func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.http.Timeout)
		defer cancel()
		req, err := c.newRequest(sctx, http.MethodGet, c.cfg.Upstream.API.TableData, sel.Query(), nil)
		if err != nil {
			return nil, err
		}
		data, err := c.send(req)
		if err != nil {
			return nil, err
		}
		s, err := matrix.DecodeSnapshot(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "load table data")
		}
		return s, nil
	})
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "load table data")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			applog.Debugf("upstream snapshot shared for %q", sel.Key())
		}
		return res.Val.(*matrix.Snapshot), nil
	}
}

// Substeps fetches the sub-step list of one assignment.
func (c *Client) Substeps(ctx context.Context, taskID int64) (matrix.SubstepList, error) {
	var l matrix.SubstepList
	q := url.Values{"taskId": {strconv.FormatInt(taskID, 10)}}
	if err := c.do(ctx, http.MethodGet, c.cfg.Upstream.API.Substeps, q, nil, &l); err != nil {
		return matrix.SubstepList{}, err
	}
	l.TaskID = taskID
	return l, nil
}

// ToggleResult is the backend answer of a sub-step toggle.
type ToggleResult struct {
	Result
	DoneOpen matrix.DoneOpen `json:"zwischenschritte_done_open"`
	Done     bool            `json:"zwischenschritte_done"`
}

// ToggleSubstep sets one sub-step to done or open.
func (c *Client) ToggleSubstep(ctx context.Context, taskID, stepID int64, done bool) (ToggleResult, error) {
	var r ToggleResult
	body := map[string]any{"taskId": taskID, "zwischenschrittId": stepID, "status": done}
	if err := c.do(ctx, http.MethodPost, c.cfg.Upstream.API.ToggleSubstep, nil, body, &r); err != nil {
		return r, err
	}
	if !r.Success {
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: "Zwischenschritt konnte nicht gespeichert werden"})
	}
	return r, nil
}

// AssignResult carries the created flag and new assignment id.
type AssignResult struct {
	Result
	Created bool  `json:"created"`
	TaskID  int64 `json:"task_id"`
}

func (c *Client) Assign(ctx context.Context, userID, aufgabeID int64) (AssignResult, error) {
	var r AssignResult
	body := map[string]any{"user_id": userID, "aufgabe_id": aufgabeID}
	if err := c.do(ctx, http.MethodPost, c.cfg.Upstream.API.Assign, nil, body, &r); err != nil {
		return r, err
	}
	if !r.Success {
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: r.Error})
	}
	return r, nil
}

// CountResult is the answer of the bulk assignments.
type CountResult struct {
	Result
	AssignedCount int      `json:"assigned_count"`
	Errors        []string `json:"errors"`
}

// AssignAll assigns aufgabeID to every eligible user, optionally limited to
// one person cluster.
func (c *Client) AssignAll(ctx context.Context, aufgabeID int64, personCluster string) (CountResult, error) {
	var r CountResult
	body := map[string]any{"aufgabe_id": aufgabeID, "person_cluster_id": personCluster}
	if err := c.do(ctx, http.MethodPost, c.cfg.Upstream.API.AssignAll, nil, body, &r); err != nil {
		return r, err
	}
	if !r.Success {
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: r.Error})
	}
	return r, nil
}

func (c *Client) AssignCountry(ctx context.Context, aufgabeID, countryID int64) (CountResult, error) {
	var r CountResult
	body := map[string]any{"aufgabe_id": aufgabeID, "country_id": countryID}
	if err := c.do(ctx, http.MethodPost, c.cfg.Upstream.API.AssignCountry, nil, body, &r); err != nil {
		return r, err
	}
	if !r.Success {
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: r.Error})
	}
	return r, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, pending, erledigt bool) (Result, error) {
	return c.mutate(ctx, c.cfg.Upstream.API.UpdateStatus, map[string]any{"aufgabe_id": id, "pending": pending, "erledigt": erledigt})
}

// SendReminder asks the backend to mail the assignee. The backend refuses a
// second reminder on the same day.
func (c *Client) SendReminder(ctx context.Context, id int64) (Result, error) {
	var r Result
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if err := c.do(ctx, http.MethodGet, c.cfg.Upstream.API.SendReminder, q, nil, &r); err != nil {
		return r, err
	}
	if !r.Success {
		return r, errors.WithStack(&APIError{Status: http.StatusOK, Message: r.Error})
	}
	return r, nil
}

func (c *Client) DeleteFile(ctx context.Context, id int64) (Result, error) {
	return c.mutate(ctx, c.cfg.Upstream.API.DeleteFile, map[string]any{"aufgabe_id": id})
}

// Ping checks that the backend answers at all.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.cfg.Upstream.API.Health, nil, nil, nil)
}
