// Package gateway talks to the GitHub REST and GraphQL APIs and turns their
// payloads into domain types.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

const perPage = 100

// GitHubGateway implements ghsync.Source.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	log           *zap.Logger
}

type membersQuery struct {
	Organization struct {
		MembersWithRole struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				DatabaseID githubv4.Int
				Login      githubv4.String
				Name       githubv4.String
				AvatarURL  githubv4.String
				URL        githubv4.String
				Email      githubv4.String
			}
		} `graphql:"membersWithRole(first: 100, after: $cursor)"`
	} `graphql:"organization(login: $org)"`
}

// NewGitHubGateway builds authenticated clients. apiURL selects a GitHub
// Enterprise REST endpoint such as https://ghe.example.com/api/v3/; the
// GraphQL endpoint is derived from it.
func NewGitHubGateway(token, apiURL string, log *zap.Logger) (*GitHubGateway, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = waiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	if apiURL == "" {
		return &GitHubGateway{
			restClient:    github.NewClient(httpClient),
			graphqlClient: githubv4.NewClient(httpClient),
			log:           log,
		}, nil
	}

	rest, err := github.NewClient(httpClient).WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("configure enterprise url: %w", err)
	}
	return &GitHubGateway{
		restClient:    rest,
		graphqlClient: githubv4.NewEnterpriseClient(graphqlURL(apiURL), httpClient),
		log:           log,
	}, nil
}

func graphqlURL(apiURL string) string {
	base := strings.TrimSuffix(apiURL, "/")
	base = strings.TrimSuffix(base, "/v3")
	return base + "/graphql"
}

func (g *GitHubGateway) ListMembers(ctx context.Context, org string) ([]member.User, error) {
	variables := map[string]any{
		"org":    githubv4.String(org),
		"cursor": (*githubv4.String)(nil),
	}

	var users []member.User
	for {
		var q membersQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("query organization members: %w", err)
		}

		for _, n := range q.Organization.MembersWithRole.Nodes {
			users = append(users, member.User{
				ID:           int64(n.DatabaseID),
				Login:        string(n.Login),
				Name:         string(n.Name),
				AvatarURL:    string(n.AvatarURL),
				HTMLURL:      string(n.URL),
				Email:        string(n.Email),
				Organization: org,
				Active:       true,
			})
		}

		page := q.Organization.MembersWithRole.PageInfo
		if !page.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(page.EndCursor)
	}

	g.log.Debug("fetched organization members", zap.String("org", org), zap.Int("count", len(users)))
	return users, nil
}

func (g *GitHubGateway) ListRepos(ctx context.Context, org string) ([]pr.Repo, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type:        "all",
		Sort:        "full_name",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var repos []pr.Repo
	for {
		page, resp, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		for _, r := range page {
			repos = append(repos, pr.Repo{
				ID:            r.GetID(),
				Name:          r.GetName(),
				FullName:      r.GetFullName(),
				HTMLURL:       r.GetHTMLURL(),
				Description:   r.GetDescription(),
				DefaultBranch: r.GetDefaultBranch(),
				Organization:  org,
				Active:        !r.GetArchived() && !r.GetDisabled(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// ListPullRequests pages through pull requests ordered by last update and
// stops at the first one not updated since the cursor. A zero since lists
// everything.
func (g *GitHubGateway) ListPullRequests(ctx context.Context, org, repo string, since time.Time) ([]pr.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var prs []pr.PullRequest
	for {
		page, resp, err := g.restClient.PullRequests.List(ctx, org, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull requests of %s: %w", repo, err)
		}
		for _, p := range page {
			if !since.IsZero() && p.GetUpdatedAt().Before(since) {
				return prs, nil
			}
			prs = append(prs, toPullRequest(p, org))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return prs, nil
}

func (g *GitHubGateway) ListReviews(ctx context.Context, org, repo string, number int) ([]pr.Review, error) {
	opts := &github.ListOptions{PerPage: perPage}

	var reviews []pr.Review
	for {
		page, resp, err := g.restClient.PullRequests.ListReviews(ctx, org, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list reviews of %s#%d: %w", repo, number, err)
		}
		for _, r := range page {
			reviews = append(reviews, toReview(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

func toPullRequest(p *github.PullRequest, org string) pr.PullRequest {
	out := pr.PullRequest{
		ID:             p.GetID(),
		Number:         p.GetNumber(),
		Title:          p.GetTitle(),
		HTMLURL:        p.GetHTMLURL(),
		State:          pr.State(p.GetState()),
		Draft:          p.GetDraft(),
		AuthorID:       p.GetUser().GetID(),
		AuthorLogin:    p.GetUser().GetLogin(),
		RepositoryID:   p.GetBase().GetRepo().GetID(),
		RepositoryName: p.GetBase().GetRepo().GetName(),
		Organization:   org,
		CreatedAt:      p.GetCreatedAt().Time,
		UpdatedAt:      p.GetUpdatedAt().Time,
		ClosedAt:       timePtr(p.ClosedAt),
		MergedAt:       timePtr(p.MergedAt),
	}
	for _, u := range p.RequestedReviewers {
		out.RequestedReviewers = append(out.RequestedReviewers, pr.Reviewer{
			UserID:  u.GetID(),
			Login:   u.GetLogin(),
			Pending: true,
		})
	}
	return out
}

func toReview(r *github.PullRequestReview) pr.Review {
	return pr.Review{
		ID:          r.GetID(),
		UserID:      r.GetUser().GetID(),
		UserLogin:   r.GetUser().GetLogin(),
		State:       pr.ReviewState(strings.ToUpper(r.GetState())),
		SubmittedAt: r.GetSubmittedAt().Time,
		HTMLURL:     r.GetHTMLURL(),
	}
}

func timePtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
