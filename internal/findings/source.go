/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package findings

import (
    "context"
    "fmt"
    "strings"

    "github.com/HamedShams/vuln-pulse/internal/domain"
    "github.com/HamedShams/vuln-pulse/internal/tracker"
    "github.com/rs/zerolog"
)

// Subscriber is notified after a finding has been written to the tracker.
// Calls happen synchronously, in registration order. Subscribers do not
// return errors: each implementation handles its own failures, so one broken
// sink cannot abort the sync of a finding.
type Subscriber interface {
    OnFindingCreated(f domain.Finding)
    OnFindingUpdated(f domain.Finding)
}

// Source reconciles scanner-produced findings with the tracker board that is
// the durable store of open findings. It holds no mutable state of its own;
// the board is the single shared resource, and a given primary key is
// assumed to have one writer at a time.
type Source struct {
    client      tracker.Client
    subscribers []Subscriber
    log         zerolog.Logger
}

func NewSource(client tracker.Client, subscribers []Subscriber, log zerolog.Logger) *Source {
    return &Source{client: client, subscribers: subscribers, log: log}
}

// GetOpenFinding returns the open finding stored for the primary key, or nil
// when the board has none.
func (s *Source) GetOpenFinding(ctx context.Context, repository, scanner, depID, depVersion string) (*domain.Finding, error) {
    issue, err := s.findOpenIssue(ctx, repository, scanner, depID, depVersion)
    if err != nil || issue == nil { return nil, err }
    return s.decodeOpenFinding(*issue, repository, scanner, depID, depVersion)
}

// CreateOrUpdateOpenFinding writes f to the board. When no issue exists for
// f's primary key one is created and f gains its issue id and permalink;
// when one exists it is updated with f's data, incoming values winning for
// every attribute except the identity fields. Cleared optional attributes
// (risk, due date, score, people, projects) are written through as cleared.
func (s *Source) CreateOrUpdateOpenFinding(ctx context.Context, f *domain.Finding) error {
    issue, err := s.findOpenIssue(ctx, f.Repository, f.Scanner, f.VulnerableDependency.ID, f.VulnerableDependency.Version)
    if err != nil { return err }

    if issue == nil {
        created, err := s.client.CreateIssue(ctx, fieldsForCreate(encodeFinding(*f)))
        if err != nil { return fmt.Errorf("create finding issue: %w", err) }
        f.JiraIssueID = created.Key
        f.MoreInfo = created.Permalink
        s.log.Info().Str("issue", f.JiraIssueID).Str("repo", f.Repository).Str("scanner", f.Scanner).
            Str("dep", f.VulnerableDependency.Name).Msg("finding created")
        for _, sub := range s.subscribers { sub.OnFindingCreated(*f) }
        return nil
    }

    existing, err := s.decodeOpenFinding(*issue, f.Repository, f.Scanner, f.VulnerableDependency.ID, f.VulnerableDependency.Version)
    if err != nil { return err }
    f.JiraIssueID = existing.JiraIssueID
    f.MoreInfo = existing.MoreInfo
    if err := s.client.UpdateIssue(ctx, existing.JiraIssueID, fieldsForUpdate(encodeFinding(*f))); err != nil {
        return fmt.Errorf("update finding issue %s: %w", existing.JiraIssueID, err)
    }
    s.log.Info().Str("issue", f.JiraIssueID).Str("repo", f.Repository).Str("scanner", f.Scanner).
        Str("dep", f.VulnerableDependency.Name).Msg("finding updated")
    for _, sub := range s.subscribers { sub.OnFindingUpdated(*f) }
    return nil
}

// GetRiskAssessors returns the people currently assigned to risk assessment,
// kept as a person-list field on a fixed ticket. An empty assignment is a
// data error on that ticket.
func (s *Source) GetRiskAssessors(ctx context.Context) ([]domain.User, error) {
    issue, err := s.client.Issue(ctx, currentRiskAssessorTicket)
    if err != nil { return nil, err }
    users := decodePersons(issue.Field(fieldRiskAssessor))
    if len(users) == 0 {
        return nil, fmt.Errorf("no risk assessors assigned on %s", currentRiskAssessorTicket)
    }
    return users, nil
}

// CommitHasBlockException reports whether the exception ticket for the given
// commit type carries a comment naming the commit hash.
func (s *Source) CommitHasBlockException(ctx context.Context, commitType domain.CommitType, commitHash string) (bool, error) {
    ticket := mergeRequestExceptionTicket
    if commitType == domain.ReleaseCommit { ticket = releaseCandidateExceptionTicket }
    comments, err := s.client.Comments(ctx, ticket)
    if err != nil { return false, err }
    for _, c := range comments {
        if strings.Contains(c.Body, commitHash) { return true, nil }
    }
    return false, nil
}

func (s *Source) findOpenIssue(ctx context.Context, repository, scanner, depID, depVersion string) (*tracker.Issue, error) {
    if err := validatePrimaryKey(repository, scanner, depID, depVersion); err != nil { return nil, err }
    issues, err := s.client.SearchIssues(ctx, openFindingQuery(repository, scanner, depID, depVersion))
    if err != nil { return nil, err }
    switch len(issues) {
    case 0:
        return nil, nil
    case 1:
        return &issues[0], nil
    default:
        return nil, &IntegrityError{Key: primaryKey(repository, scanner, depID, depVersion), Count: len(issues)}
    }
}

func (s *Source) decodeOpenFinding(issue tracker.Issue, repository, scanner, depID, depVersion string) (*domain.Finding, error) {
    f, err := decodeFinding(issue)
    if err != nil { return nil, err }
    if f.Repository != repository || f.Scanner != scanner ||
        f.VulnerableDependency.ID != depID || f.VulnerableDependency.Version != depVersion {
        return nil, &ConsistencyError{
            Queried: primaryKey(repository, scanner, depID, depVersion),
            Decoded: primaryKey(f.Repository, f.Scanner, f.VulnerableDependency.ID, f.VulnerableDependency.Version),
        }
    }
    return f, nil
}

// A new issue is created only with its populated fields; an update keeps the
// unset values so clearing a previously stored risk, due date or score
// actually overwrites it. Project and issue type are fixed at creation.
func fieldsForCreate(fields map[string]any) map[string]any {
    out := make(map[string]any, len(fields))
    for k, v := range fields {
        switch t := v.(type) {
        case nil:
            continue
        case []string:
            if len(t) == 0 { continue }
        }
        out[k] = v
    }
    return out
}

func fieldsForUpdate(fields map[string]any) map[string]any {
    out := make(map[string]any, len(fields))
    for k, v := range fields {
        if k == fieldProject || k == fieldIssueType { continue }
        out[k] = v
    }
    return out
}
