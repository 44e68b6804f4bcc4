/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/HamedShams/vuln-pulse/internal/config"
    "github.com/HamedShams/vuln-pulse/internal/tracker"
    "github.com/rs/zerolog"
)

// Client talks to the Jira REST v2 API and implements tracker.Client.
type Client struct {
    baseURL string
    token   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
}

var _ tracker.Client = (*Client)(nil)

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: strings.TrimRight(cfg.JiraBaseURL, "/"),
        token:   cfg.JiraPAT,
        user:    cfg.JiraUsername,
        pass:    cfg.JiraPassword,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
    }
}

// SearchIssues pages through all results for the query.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]tracker.Issue, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    var issues []tracker.Issue
    startAt := 0
    for {
        q := url.Values{}
        q.Set("jql", jql)
        q.Set("fields", "*all")
        q.Set("startAt", fmt.Sprint(startAt))
        out, err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil)
        if err != nil { return nil, err }
        page, _ := out["issues"].([]any)
        for _, raw := range page {
            if m, ok := raw.(map[string]any); ok { issues = append(issues, c.decodeIssue(m)) }
        }
        total, _ := out["total"].(float64)
        startAt += len(page)
        if len(page) == 0 || startAt >= int(total) { break }
    }
    return issues, nil
}

func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (tracker.Issue, error) {
    out, err := c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/api/2/issue", nil),
        map[string]any{"fields": fields})
    if err != nil { return tracker.Issue{}, err }
    id, _ := out["id"].(string)
    key, _ := out["key"].(string)
    if key == "" { return tracker.Issue{}, fmt.Errorf("jira: create returned no issue key") }
    return tracker.Issue{ID: id, Key: key, Permalink: c.permalink(key), Fields: fields}, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id string, fields map[string]any) error {
    if id == "" { return errors.New("jira: empty issue id") }
    _, err := c.doJSON(ctx, http.MethodPut, c.apiURL("/rest/api/2/issue/"+url.PathEscape(id), nil),
        map[string]any{"fields": fields})
    return err
}

func (c *Client) Issue(ctx context.Context, key string) (tracker.Issue, error) {
    if key == "" { return tracker.Issue{}, errors.New("jira: empty issue key") }
    q := url.Values{}
    q.Set("fields", "*all")
    out, err := c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/issue/"+url.PathEscape(key), q), nil)
    if err != nil { return tracker.Issue{}, err }
    return c.decodeIssue(out), nil
}

func (c *Client) Comments(ctx context.Context, key string) ([]tracker.Comment, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    var comments []tracker.Comment
    startAt := 0
    for {
        q := url.Values{}
        q.Set("startAt", fmt.Sprint(startAt))
        u := c.apiURL("/rest/api/2/issue/"+url.PathEscape(key)+"/comment", q)
        out, err := c.doJSON(ctx, http.MethodGet, u, nil)
        if err != nil { return nil, err }
        page, _ := out["comments"].([]any)
        for _, raw := range page {
            if m, ok := raw.(map[string]any); ok {
                body, _ := m["body"].(string)
                comments = append(comments, tracker.Comment{Body: body})
            }
        }
        total, _ := out["total"].(float64)
        startAt += len(page)
        if len(page) == 0 || startAt >= int(total) { break }
    }
    return comments, nil
}

func (c *Client) decodeIssue(m map[string]any) tracker.Issue {
    id, _ := m["id"].(string)
    key, _ := m["key"].(string)
    fields, _ := m["fields"].(map[string]any)
    return tracker.Issue{ID: id, Key: key, Permalink: c.permalink(key), Fields: fields}
}

func (c *Client) permalink(key string) string {
    return c.baseURL + "/browse/" + key
}

func (c *Client) apiURL(path string, q url.Values) string {
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            b, _ := io.ReadAll(resp.Body)
            resp.Body.Close()
            if resp.StatusCode >= 300 {
                // retry on 429/5xx
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                } else {
                    return nil, fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                }
            } else {
                if len(b) == 0 { return map[string]any{}, nil } // updates return 204
                var out map[string]any
                if err := json.Unmarshal(b, &out); err != nil { return nil, err }
                return out, nil
            }
        }
        // backoff
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}
