package pg

import (
	"context"
	"database/sql"
	"errors"

	"reviewarena/internal/domain/ghsync"
)

type SyncStatusRepository struct {
	db *sql.DB
}

func NewSyncStatusRepository(db *sql.DB) *SyncStatusRepository {
	return &SyncStatusRepository{db: db}
}

const syncStatusColumns = `organization, sync_type, state, started_at, last_sync_time,
       event_type, error_message, duration_ms, updated_at`

func (r *SyncStatusRepository) Get(ctx context.Context, org string, typ ghsync.Type) (ghsync.Status, error) {
	s, err := scanStatus(queryRow(ctx, r.db,
		`SELECT `+syncStatusColumns+`
		   FROM sync_status
		  WHERE organization = $1 AND sync_type = $2`,
		org, string(typ),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return ghsync.NewStatus(org, typ), nil
	}
	return s, wrapDBError(err, "Get")
}

func (r *SyncStatusRepository) Save(ctx context.Context, s ghsync.Status) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO sync_status (organization, sync_type, state, started_at, last_sync_time,
		                          event_type, error_message, duration_ms, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (organization, sync_type) DO UPDATE
		    SET state = EXCLUDED.state,
		        started_at = EXCLUDED.started_at,
		        last_sync_time = EXCLUDED.last_sync_time,
		        event_type = EXCLUDED.event_type,
		        error_message = EXCLUDED.error_message,
		        duration_ms = EXCLUDED.duration_ms,
		        updated_at = EXCLUDED.updated_at`,
		s.Organization, string(s.Type), string(s.State), nullTime(s.StartedAt), nullTime(s.LastSyncTime),
		s.EventType, s.ErrorMessage, s.DurationMs, s.UpdatedAt,
	)
	return wrapDBError(err, "Save")
}

func (r *SyncStatusRepository) List(ctx context.Context, org string) ([]ghsync.Status, error) {
	rows, err := query(ctx, r.db,
		`SELECT `+syncStatusColumns+`
		   FROM sync_status
		  WHERE organization = $1
		  ORDER BY sync_type`,
		org,
	)
	if err != nil {
		return nil, wrapDBError(err, "List")
	}
	defer rows.Close()

	var out []ghsync.Status
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, wrapDBError(err, "List: scan")
		}
		out = append(out, s)
	}
	return out, wrapDBError(rows.Err(), "List")
}

func scanStatus(row scanner) (ghsync.Status, error) {
	var (
		s                     ghsync.Status
		typ, state            string
		startedAt, lastSyncAt sql.NullTime
	)
	err := row.Scan(&s.Organization, &typ, &state, &startedAt, &lastSyncAt,
		&s.EventType, &s.ErrorMessage, &s.DurationMs, &s.UpdatedAt)
	if err != nil {
		return ghsync.Status{}, err
	}
	s.Type = ghsync.Type(typ)
	s.State = ghsync.State(state)
	s.StartedAt = timePtr(startedAt)
	s.LastSyncTime = timePtr(lastSyncAt)
	return s, nil
}
