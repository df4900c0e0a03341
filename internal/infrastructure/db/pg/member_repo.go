package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/member"
)

var userColumns = []string{
	"id", "organization", "login", "name", "avatar_url", "html_url", "email",
	"is_active", "created_at", "updated_at",
}

type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// UpsertMany refreshes profile fields. is_active is only set on insert so a
// manual exclusion survives later syncs.
func (r *MemberRepository) UpsertMany(ctx context.Context, org string, users []member.User) error {
	for _, u := range users {
		_, err := exec(ctx, r.db,
			`INSERT INTO github_users (id, organization, login, name, avatar_url, html_url, email, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
			 ON CONFLICT (id, organization) DO UPDATE
			    SET login = EXCLUDED.login,
			        name = EXCLUDED.name,
			        avatar_url = EXCLUDED.avatar_url,
			        html_url = EXCLUDED.html_url,
			        email = EXCLUDED.email,
			        updated_at = NOW()`,
			u.ID, org, u.Login, u.DisplayName(), u.AvatarURL, u.HTMLURL, u.Email,
		)
		if err != nil {
			return wrapDBError(err, "UpsertMany")
		}
	}
	return nil
}

func (r *MemberRepository) MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	res, err := execBuilder(ctx, r.db, psql.Update("github_users").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"organization": org, "is_active": true}).
		Where(squirrel.NotEq{"id": keepIDs}))
	if err != nil {
		return 0, wrapDBError(err, "MarkInactiveExcept")
	}
	return res.RowsAffected()
}

func (r *MemberRepository) SetActive(ctx context.Context, id int64, active bool) (member.User, error) {
	q, args, err := psql.Update("github_users").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return member.User{}, err
	}
	u, err := scanUser(queryRow(ctx, r.db, q, args...))
	return u, r.notFound(err, "SetActive")
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (member.User, error) {
	q, args, err := psql.Select(userColumns...).
		From("github_users").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return member.User{}, err
	}
	u, err := scanUser(queryRow(ctx, r.db, q, args...))
	return u, r.notFound(err, "GetByID")
}

func (r *MemberRepository) GetByLogin(ctx context.Context, org, login string) (member.User, error) {
	q, args, err := psql.Select(userColumns...).
		From("github_users").
		Where(squirrel.Eq{"organization": org}).
		Where("lower(login) = lower(?)", login).
		ToSql()
	if err != nil {
		return member.User{}, err
	}
	u, err := scanUser(queryRow(ctx, r.db, q, args...))
	return u, r.notFound(err, "GetByLogin")
}

func (r *MemberRepository) ListByOrg(ctx context.Context, org string, activeOnly bool) ([]member.User, error) {
	b := psql.Select(userColumns...).
		From("github_users").
		Where(squirrel.Eq{"organization": org}).
		OrderBy("login")
	if activeOnly {
		b = b.Where(squirrel.Eq{"is_active": true})
	}

	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, wrapDBError(err, "ListByOrg")
	}
	defer rows.Close()

	var users []member.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDBError(err, "ListByOrg: scan")
		}
		users = append(users, u)
	}
	return users, wrapDBError(rows.Err(), "ListByOrg")
}

func (r *MemberRepository) notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("user not found")
	}
	return wrapDBError(err, op)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (member.User, error) {
	var u member.User
	err := s.Scan(&u.ID, &u.Organization, &u.Login, &u.Name, &u.AvatarURL, &u.HTMLURL, &u.Email,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
