package pg

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"reviewarena/internal/domain/pr"
)

type PRRepository struct {
	db *sql.DB
}

func NewPRRepository(db *sql.DB) *PRRepository {
	return &PRRepository{db: db}
}

func (r *PRRepository) UpsertRepos(ctx context.Context, org string, repos []pr.Repo) error {
	for _, repo := range repos {
		_, err := exec(ctx, r.db,
			`INSERT INTO repositories (id, organization, name, full_name, html_url, description, default_branch, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE
			    SET organization = EXCLUDED.organization,
			        name = EXCLUDED.name,
			        full_name = EXCLUDED.full_name,
			        html_url = EXCLUDED.html_url,
			        description = EXCLUDED.description,
			        default_branch = EXCLUDED.default_branch,
			        is_active = EXCLUDED.is_active,
			        updated_at = NOW()`,
			repo.ID, org, repo.Name, repo.FullName, repo.HTMLURL, repo.Description, repo.DefaultBranch, repo.Active,
		)
		if err != nil {
			return wrapDBError(err, "UpsertRepos")
		}
	}
	return nil
}

func (r *PRRepository) MarkReposInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	res, err := execBuilder(ctx, r.db, psql.Update("repositories").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"organization": org, "is_active": true}).
		Where(squirrel.NotEq{"id": keepIDs}))
	if err != nil {
		return 0, wrapDBError(err, "MarkReposInactiveExcept")
	}
	return res.RowsAffected()
}

func (r *PRRepository) ListRepos(ctx context.Context, org string, activeOnly bool) ([]pr.Repo, error) {
	b := psql.Select("id", "organization", "name", "full_name", "html_url", "description", "default_branch", "is_active").
		From("repositories").
		Where(squirrel.Eq{"organization": org}).
		OrderBy("name")
	if activeOnly {
		b = b.Where(squirrel.Eq{"is_active": true})
	}

	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, wrapDBError(err, "ListRepos")
	}
	defer rows.Close()

	var repos []pr.Repo
	for rows.Next() {
		var x pr.Repo
		if err := rows.Scan(&x.ID, &x.Organization, &x.Name, &x.FullName, &x.HTMLURL,
			&x.Description, &x.DefaultBranch, &x.Active); err != nil {
			return nil, wrapDBError(err, "ListRepos: scan")
		}
		repos = append(repos, x)
	}
	return repos, wrapDBError(rows.Err(), "ListRepos")
}

// UpsertPullRequest stores p and its requested reviewers. Reviewer rows are
// never removed: a reviewer dropped from the request list stays recorded as
// assigned with pending = false.
func (r *PRRepository) UpsertPullRequest(ctx context.Context, p pr.PullRequest) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO pull_requests (id, organization, repository_id, repository_name, number, title, html_url,
		                            state, draft, author_id, author_login, created_at, updated_at, closed_at, merged_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO UPDATE
		    SET title = EXCLUDED.title,
		        html_url = EXCLUDED.html_url,
		        state = EXCLUDED.state,
		        draft = EXCLUDED.draft,
		        updated_at = GREATEST(pull_requests.updated_at, EXCLUDED.updated_at),
		        closed_at = EXCLUDED.closed_at,
		        merged_at = EXCLUDED.merged_at,
		        synced_at = NOW()`,
		p.ID, p.Organization, p.RepositoryID, p.RepositoryName, p.Number, p.Title, p.HTMLURL,
		string(p.State), p.Draft, p.AuthorID, p.AuthorLogin, p.CreatedAt, p.UpdatedAt,
		nullTime(p.ClosedAt), nullTime(p.MergedAt),
	)
	if err != nil {
		return wrapDBError(err, "UpsertPullRequest")
	}

	if _, err := exec(ctx, r.db,
		`UPDATE pull_request_reviewers SET pending = FALSE WHERE pull_request_id = $1 AND pending`,
		p.ID,
	); err != nil {
		return wrapDBError(err, "UpsertPullRequest: reset reviewers")
	}

	for _, rv := range p.RequestedReviewers {
		if _, err := exec(ctx, r.db,
			`INSERT INTO pull_request_reviewers (pull_request_id, user_id, login, pending)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (pull_request_id, user_id) DO UPDATE
			    SET login = EXCLUDED.login,
			        pending = EXCLUDED.pending`,
			p.ID, rv.UserID, rv.Login, rv.Pending,
		); err != nil {
			return wrapDBError(err, "UpsertPullRequest: reviewer")
		}
	}
	return nil
}

func (r *PRRepository) UpsertReviews(ctx context.Context, reviews []pr.Review) error {
	for _, rv := range reviews {
		_, err := exec(ctx, r.db,
			`INSERT INTO reviews (id, pull_request_id, organization, repository_name, user_id, user_login,
			                      state, submitted_at, html_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE
			    SET state = EXCLUDED.state,
			        user_login = EXCLUDED.user_login,
			        html_url = EXCLUDED.html_url`,
			rv.ID, rv.PullRequestID, rv.Organization, rv.RepositoryName, rv.UserID, rv.UserLogin,
			string(rv.State), rv.SubmittedAt, rv.HTMLURL,
		)
		if err != nil {
			return wrapDBError(err, "UpsertReviews")
		}
	}
	return nil
}

// prConditions renders f for the pull_requests table aliased as p.
func prConditions(f pr.Filter) squirrel.And {
	cond := squirrel.And{squirrel.Eq{"p.organization": f.Org}}
	if len(f.PullRequestIDs) > 0 {
		cond = append(cond, squirrel.Eq{"p.id": f.PullRequestIDs})
	}
	if len(f.UserIDs) > 0 {
		cond = append(cond, squirrel.Eq{"p.author_id": f.UserIDs})
	}
	if len(f.RepositoryNames) > 0 {
		cond = append(cond, squirrel.Eq{"p.repository_name": f.RepositoryNames})
	}
	if f.OpenOnly {
		cond = append(cond, squirrel.Eq{"p.state": string(pr.StateOpen)})
	}
	if !f.From.IsZero() {
		if f.IncludeOpen {
			cond = append(cond, squirrel.Or{
				squirrel.GtOrEq{"p.updated_at": f.From},
				squirrel.Eq{"p.state": string(pr.StateOpen)},
			})
		} else {
			cond = append(cond, squirrel.GtOrEq{"p.updated_at": f.From})
		}
	}
	if !f.To.IsZero() {
		cond = append(cond, squirrel.LtOrEq{"p.created_at": f.To})
	}
	return cond
}

func (r *PRRepository) ListPullRequests(ctx context.Context, f pr.Filter) ([]pr.PullRequest, error) {
	cond := prConditions(f)

	rows, err := queryBuilder(ctx, r.db, psql.
		Select("p.id", "p.organization", "p.repository_id", "p.repository_name", "p.number", "p.title",
			"p.html_url", "p.state", "p.draft", "p.author_id", "p.author_login",
			"p.created_at", "p.updated_at", "p.closed_at", "p.merged_at").
		From("pull_requests p").
		Where(cond).
		OrderBy("p.created_at DESC", "p.id"))
	if err != nil {
		return nil, wrapDBError(err, "ListPullRequests")
	}
	defer rows.Close()

	var (
		prs   []pr.PullRequest
		index = make(map[int64]int)
	)
	for rows.Next() {
		var (
			p                  pr.PullRequest
			state              string
			closedAt, mergedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Organization, &p.RepositoryID, &p.RepositoryName, &p.Number, &p.Title,
			&p.HTMLURL, &state, &p.Draft, &p.AuthorID, &p.AuthorLogin,
			&p.CreatedAt, &p.UpdatedAt, &closedAt, &mergedAt); err != nil {
			return nil, wrapDBError(err, "ListPullRequests: scan")
		}
		p.State = pr.State(state)
		p.ClosedAt = timePtr(closedAt)
		p.MergedAt = timePtr(mergedAt)
		index[p.ID] = len(prs)
		prs = append(prs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "ListPullRequests")
	}
	if len(prs) == 0 {
		return prs, nil
	}

	reviewers, err := queryBuilder(ctx, r.db, psql.
		Select("rr.pull_request_id", "rr.user_id", "rr.login", "rr.pending").
		From("pull_request_reviewers rr").
		Join("pull_requests p ON p.id = rr.pull_request_id").
		Where(cond).
		OrderBy("rr.pull_request_id", "rr.user_id"))
	if err != nil {
		return nil, wrapDBError(err, "ListPullRequests: reviewers")
	}
	defer reviewers.Close()

	for reviewers.Next() {
		var (
			prID int64
			rv   pr.Reviewer
		)
		if err := reviewers.Scan(&prID, &rv.UserID, &rv.Login, &rv.Pending); err != nil {
			return nil, wrapDBError(err, "ListPullRequests: scan reviewer")
		}
		if i, ok := index[prID]; ok {
			prs[i].RequestedReviewers = append(prs[i].RequestedReviewers, rv)
		}
	}
	return prs, wrapDBError(reviewers.Err(), "ListPullRequests: reviewers")
}

func (r *PRRepository) ListReviews(ctx context.Context, f pr.Filter) ([]pr.Review, error) {
	b := psql.Select("id", "pull_request_id", "organization", "repository_name", "user_id", "user_login",
		"state", "submitted_at", "html_url").
		From("reviews").
		Where(squirrel.Eq{"organization": f.Org}).
		OrderBy("submitted_at", "id")

	if len(f.PullRequestIDs) > 0 {
		b = b.Where(squirrel.Eq{"pull_request_id": f.PullRequestIDs})
	}
	if len(f.UserIDs) > 0 {
		b = b.Where(squirrel.Eq{"user_id": f.UserIDs})
	}
	if len(f.RepositoryNames) > 0 {
		b = b.Where(squirrel.Eq{"repository_name": f.RepositoryNames})
	}
	if !f.From.IsZero() {
		b = b.Where(squirrel.GtOrEq{"submitted_at": f.From})
	}
	if !f.To.IsZero() {
		b = b.Where(squirrel.LtOrEq{"submitted_at": f.To})
	}

	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, wrapDBError(err, "ListReviews")
	}
	defer rows.Close()

	var reviews []pr.Review
	for rows.Next() {
		var (
			rv    pr.Review
			state string
		)
		if err := rows.Scan(&rv.ID, &rv.PullRequestID, &rv.Organization, &rv.RepositoryName, &rv.UserID,
			&rv.UserLogin, &state, &rv.SubmittedAt, &rv.HTMLURL); err != nil {
			return nil, wrapDBError(err, "ListReviews: scan")
		}
		rv.State = pr.ReviewState(state)
		reviews = append(reviews, rv)
	}
	return reviews, wrapDBError(rows.Err(), "ListReviews")
}
