package pg

import (
	"context"
	"database/sql"

	"reviewarena/internal/domain/stats"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetReviewerLoad(ctx context.Context, org string, teamName *string) ([]stats.ReviewerLoad, error) {
	const q = `
	SELECT u.id, u.login,
	       COUNT(rr.pull_request_id) AS assigned_total,
	       COUNT(rr.pull_request_id) FILTER (WHERE rr.pending AND p.state = 'open') AS assigned_open,
	       COUNT(rr.pull_request_id) FILTER (WHERE p.merged_at IS NOT NULL) AS assigned_merged
	  FROM github_users u
	  LEFT JOIN (pull_request_reviewers rr
	             JOIN pull_requests p ON p.id = rr.pull_request_id AND p.organization = $1)
	         ON rr.user_id = u.id
	 WHERE u.organization = $1 AND u.is_active
	   AND ($2::text IS NULL OR EXISTS (
	        SELECT 1 FROM team_members tm WHERE tm.team_name = $2::text AND tm.user_id = u.id))
	 GROUP BY u.id, u.login
	 ORDER BY assigned_open DESC, u.login`

	var arg any
	if teamName != nil {
		arg = *teamName
	}

	rows, err := query(ctx, r.db, q, org, arg)
	if err != nil {
		return nil, wrapDBError(err, "GetReviewerLoad")
	}
	defer rows.Close()

	var res []stats.ReviewerLoad
	for rows.Next() {
		var s stats.ReviewerLoad
		if err := rows.Scan(
			&s.UserID,
			&s.Login,
			&s.AssignedTotal,
			&s.AssignedOpen,
			&s.AssignedMerged,
		); err != nil {
			return nil, wrapDBError(err, "GetReviewerLoad")
		}
		res = append(res, s)
	}

	return res, wrapDBError(rows.Err(), "GetReviewerLoad")
}

func (r *StatsRepository) GetRepositoryBacklog(ctx context.Context, org string) ([]stats.RepositoryBacklog, error) {
	const q = `
	SELECT p.repository_name,
	       COUNT(*) AS pull_requests,
	       COUNT(*) FILTER (WHERE p.state = 'open') AS open_prs,
	       COUNT(*) FILTER (WHERE p.state = 'open' AND NOT EXISTS (
	           SELECT 1 FROM reviews rv WHERE rv.pull_request_id = p.id AND rv.state <> 'PENDING')) AS unreviewed,
	       COALESCE(SUM(pend.n) FILTER (WHERE p.state = 'open'), 0)::bigint AS pending_requests
	  FROM pull_requests p
	  LEFT JOIN LATERAL (
	       SELECT COUNT(*) AS n FROM pull_request_reviewers rr
	        WHERE rr.pull_request_id = p.id AND rr.pending) pend ON TRUE
	 WHERE p.organization = $1
	 GROUP BY p.repository_name
	 ORDER BY open_prs DESC, p.repository_name`

	rows, err := query(ctx, r.db, q, org)
	if err != nil {
		return nil, wrapDBError(err, "GetRepositoryBacklog")
	}
	defer rows.Close()

	var res []stats.RepositoryBacklog
	for rows.Next() {
		var s stats.RepositoryBacklog
		if err := rows.Scan(
			&s.Repository,
			&s.PullRequests,
			&s.Open,
			&s.Unreviewed,
			&s.PendingRequests,
		); err != nil {
			return nil, wrapDBError(err, "GetRepositoryBacklog")
		}
		res = append(res, s)
	}

	return res, wrapDBError(rows.Err(), "GetRepositoryBacklog")
}
