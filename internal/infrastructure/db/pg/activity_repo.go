package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"reviewarena/internal/domain/activity"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record inserts entries in one statement; duplicates are skipped and the
// number of new rows is returned.
func (r *ActivityRepository) Record(ctx context.Context, entries []activity.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	b := psql.Insert("activity_log").
		Columns("organization", "user_id", "login", "activity_type", "review_state",
			"repository", "pr_number", "review_id", "occurred_at")
	for _, e := range entries {
		b = b.Values(e.Organization, e.UserID, e.Login, string(e.Type), e.ReviewState,
			e.Repository, e.PRNumber, e.ReviewID, e.OccurredAt)
	}
	b = b.Suffix("ON CONFLICT (user_id, activity_type, repository, pr_number, review_id) DO NOTHING")

	res, err := execBuilder(ctx, r.db, b)
	if err != nil {
		return 0, wrapDBError(err, "Record")
	}
	return res.RowsAffected()
}

func (r *ActivityRepository) CountForRepositorySince(ctx context.Context, org, repo string, since time.Time) (int, error) {
	var n int
	err := queryRow(ctx, r.db,
		`SELECT COUNT(*)
		   FROM activity_log
		  WHERE organization = $1 AND repository = $2 AND occurred_at >= $3`,
		org, repo, since,
	).Scan(&n)
	return n, wrapDBError(err, "CountForRepositorySince")
}

// DailyCounts returns hourly buckets; callers fold them into days of their
// own time zone.
func (r *ActivityRepository) DailyCounts(ctx context.Context, org string, typ activity.Type, from, to time.Time) ([]activity.DailyCount, error) {
	b := psql.Select("date_trunc('hour', occurred_at) AS bucket", "COUNT(*)").
		From("activity_log").
		Where(squirrel.Eq{"organization": org, "activity_type": string(typ)}).
		GroupBy("bucket").
		OrderBy("bucket")
	if !from.IsZero() {
		b = b.Where(squirrel.GtOrEq{"occurred_at": from})
	}
	if !to.IsZero() {
		b = b.Where(squirrel.LtOrEq{"occurred_at": to})
	}

	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, wrapDBError(err, "DailyCounts")
	}
	defer rows.Close()

	var out []activity.DailyCount
	for rows.Next() {
		var c activity.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, wrapDBError(err, "DailyCounts: scan")
		}
		out = append(out, c)
	}
	return out, wrapDBError(rows.Err(), "DailyCounts")
}
