package user

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertUser = `INSERT INTO %s.users(json_data) VALUES($1)`
	pgUpdateUser = `
		UPDATE
			%s.users
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgCountUsers = `SELECT count(json_data) FROM %s.users
		%s`
	pgListUsers = `SELECT json_data FROM %s.users
		%s`

	pgClauseDeleted   = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseEmails    = `(json_data->>'email')::TEXT IN (?)`
	pgClauseEnabled   = `(json_data->>'enabled')::BOOL = ?::BOOL`
	pgClauseIDs       = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseUsernames = `(json_data->>'user_name')::TEXT IN (?)`

	pgOrderCreatedAt = `ORDER BY json_data->>'created_at' DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.users (
		json_data JSONB NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.users`

	pgIndexEmail = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.users(((json_data->>'email')::TEXT))
		WHERE
			(json_data->>'enabled')::BOOL = true
			AND (json_data->>'email')::TEXT != ''`
	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.users(((json_data->>'id')::BIGINT))
		WHERE
			(json_data->>'enabled')::BOOL = true`
	pgIndexUsername = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.users(((json_data->>'user_name')::TEXT))
		WHERE
			(json_data->>'enabled')::BOOL = true
			AND (json_data->>'user_name')::TEXT != ''`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	return s.countUsers(ns, where, params...)
}

func (s *pgService) Put(ns string, input *User) (*User, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateUser

		params []interface{}
	)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.ID != 0 {
		params = []interface{}{
			input.ID,
		}

		us, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				input.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 0 {
			return nil, wrapError(ErrNotFound, "%d", input.ID)
		}

		input.CreatedAt = us[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if input.CreatedAt.IsZero() {
			input.CreatedAt = now
		}
		input.ID = id

		query = pgInsertUser
	}

	input.UpdatedAt = now

	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	params = append([]interface{}{data}, params...)

	_, err = s.db.Exec(fmt.Sprintf(query, ns), params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			_, err = s.db.Exec(fmt.Sprintf(query, ns), params...)
		}

		if pg.IsNotUnique(pg.WrapError(err)) {
			return nil, wrapError(ErrNotUnique, "%s", input.Email)
		}
	}

	return input, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listUsers(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "users_email", pgIndexEmail),
		pg.GuardIndex(ns, "users_id", pgIndexID),
		pg.GuardIndex(ns, "users_username", pgIndexUsername),
	}

	for _, q := range qs {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("setup '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	qs := []string{
		fmt.Sprintf(pgDropTable, ns),
	}

	for _, q := range qs {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("teardown '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) countUsers(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		query = fmt.Sprintf(pgCountUsers, ns, where)

		count int
	)

	err := s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return 0, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) listUsers(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListUsers, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listUsers(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	us := List{}

	for rows.Next() {
		var (
			u = &User{}

			raw []byte
		)

		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(raw, u); err != nil {
			return nil, err
		}

		us = append(us, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return us, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if opts.Deleted != nil {
		clause, _, err := sqlx.In(pgClauseDeleted, []interface{}{*opts.Deleted})
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, *opts.Deleted)
	}

	if len(opts.Emails) > 0 {
		ps := []interface{}{}

		for _, email := range opts.Emails {
			ps = append(ps, email)
		}

		clause, _, err := sqlx.In(pgClauseEmails, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if opts.Enabled != nil {
		clause, _, err := sqlx.In(pgClauseEnabled, []interface{}{*opts.Enabled})
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, *opts.Enabled)
	}

	if len(opts.IDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.IDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Usernames) > 0 {
		ps := []interface{}{}

		for _, username := range opts.Usernames {
			ps = append(ps, username)
		}

		clause, _, err := sqlx.In(pgClauseUsernames, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	where = fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt)

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
