package session

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertSession = `INSERT INTO
		%s.sessions(user_id, session_id, created_at, enabled)
		VALUES($1, $2, $3, $4)`
	pgUpdateSession = `
		UPDATE
			%s.sessions
		SET
			enabled = $3
		WHERE
			user_id = $1 AND
			session_id = $2`

	pgClauseEnabled = `enabled = ?`
	pgClauseIDs     = `session_id IN (?)`
	pgClauseUserIDs = `user_id IN (?)`

	pgOrderCreatedAt = `ORDER BY created_at DESC`

	pgListSessions = `
		SELECT
			user_id, session_id, created_at, enabled
		FROM
			%s.sessions
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.sessions (
		user_id BIGINT NOT NULL,
		session_id VARCHAR(40) NOT NULL,
		created_at TIMESTAMP DEFAULT now() NOT NULL,
		enabled BOOL DEFAULT TRUE NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.sessions`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.sessions (session_id)
		WHERE
			enabled = true`
	pgIndexIDUserID = `
		CREATE INDEX
			%s
		ON
			%s.sessions (session_id, user_id)
		WHERE
			enabled = true`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Put(ns string, session *Session) (*Session, error) {
	var (
		params = []interface{}{
			session.UserID,
			session.ID,
			session.Enabled,
		}
		query = fmt.Sprintf(pgUpdateSession, ns)
	)

	if err := session.Validate(); err != nil {
		return nil, err
	}

	if session.CreatedAt.IsZero() {
		ts, err := time.Parse(pg.TimeFormat, time.Now().Format(pg.TimeFormat))
		if err != nil {
			return nil, err
		}
		session.CreatedAt = ts
	}

	session.CreatedAt = session.CreatedAt.UTC()

	if session.ID == "" {
		session.ID = generateID()
		params = []interface{}{
			session.UserID,
			session.ID,
			session.CreatedAt,
			session.Enabled,
		}
		query = fmt.Sprintf(pgInsertSession, ns)
	}

	_, err := s.db.Exec(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			_, err = s.db.Exec(query, params...)
		}
	}

	return session, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if opts.Enabled != nil {
		clause, _, err := sqlx.In(pgClauseEnabled, []interface{}{*opts.Enabled})
		if err != nil {
			return nil, err
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
			return nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.UserIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.UserIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseUserIDs, ps)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	where = fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt)

	return s.listSessions(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "sessions_id", pgIndexID),
		pg.GuardIndex(ns, "sessions_id_user_id", pgIndexIDUserID),
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

func (s *pgService) listSessions(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListSessions, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listSessions(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	ss := List{}

	for rows.Next() {
		session := &Session{}

		err := rows.Scan(
			&session.UserID,
			&session.ID,
			&session.CreatedAt,
			&session.Enabled,
		)
		if err != nil {
			return nil, err
		}

		session.CreatedAt = session.CreatedAt.UTC()

		ss = append(ss, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ss, nil
}
