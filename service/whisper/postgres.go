package whisper

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertWhisper = `INSERT INTO %s.whispers(json_data) VALUES($1)`
	pgUpdateWhisper = `UPDATE %s.whispers SET json_data = $1
		WHERE (json_data->>'id')::BIGINT = $2::BIGINT`

	pgCountWhispers = `SELECT count(json_data) FROM %s.whispers
		%s`
	pgListWhispers = `SELECT json_data FROM %s.whispers
		%s`

	pgClauseBefore    = `(json_data->>'created_at') < ?`
	pgClauseDeleted   = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseID        = `(json_data->>'id')::BIGINT = ?::BIGINT`
	pgClauseProjectID = `(json_data->>'project_id')::BIGINT IN (?)`
	pgClauseRead      = `(json_data->>'read')::BOOL = ?::BOOL`
	pgClauseSenderID  = `(json_data->>'sender_id')::BIGINT IN (?)`
	pgOrderCreatedAt  = `ORDER BY json_data->>'created_at' DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.whispers
		(json_data JSONB NOT NULL)`

	pgCreateIndexCreatedAt = `CREATE INDEX %s ON %s.whispers
		USING btree ((json_data->>'created_at') DESC)`
	pgCreateIndexID = `CREATE INDEX %s ON %s.whispers
		USING btree (((json_data->>'id')::BIGINT))`
	pgCreateIndexProjectID = `CREATE INDEX %s ON %s.whispers
		USING btree (((json_data->>'project_id')::BIGINT))`
	pgCreateIndexSenderID = `CREATE INDEX %s ON %s.whispers
		USING btree (((json_data->>'sender_id')::BIGINT))`

	pgDropTable = `DROP TABLE IF EXISTS %s.whispers`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{
		db: db,
	}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	return s.countWhispers(ns, where, params...)
}

func (s *pgService) Put(ns string, whisper *Whisper) (*Whisper, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateWhisper

		params []interface{}
	)

	if err := whisper.Validate(); err != nil {
		return nil, err
	}

	if whisper.ID != 0 {
		params = []interface{}{
			whisper.ID,
		}

		ws, err := s.Query(ns, QueryOptions{
			ID: &whisper.ID,
		})
		if err != nil {
			return nil, err
		}

		if len(ws) == 0 {
			return nil, ErrNotFound
		}

		whisper.CreatedAt = ws[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if whisper.CreatedAt.IsZero() {
			whisper.CreatedAt = now
		} else {
			whisper.CreatedAt = whisper.CreatedAt.UTC()
		}

		whisper.ID = id
		query = pgInsertWhisper
	}

	whisper.UpdatedAt = now

	data, err := json.Marshal(whisper)
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
			if _, err := s.db.Exec(fmt.Sprintf(query, ns), params...); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return whisper, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listWhispers(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "whisper_created_at", pgCreateIndexCreatedAt),
		pg.GuardIndex(ns, "whisper_id", pgCreateIndexID),
		pg.GuardIndex(ns, "whisper_project_id", pgCreateIndexProjectID),
		pg.GuardIndex(ns, "whisper_sender_id", pgCreateIndexSenderID),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("query (%s): %s", query, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	qs := []string{
		fmt.Sprintf(pgDropTable, ns),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("query (%s): %s", query, err)
		}
	}

	return nil
}

func (s *pgService) countWhispers(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountWhispers, ns, where)
	)

	err := s.db.Get(&count, query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return 0, err
			}

			err = s.db.Get(&count, query, params...)
		} else {
			return 0, err
		}
	}

	return count, err
}

func (s *pgService) listWhispers(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListWhispers, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			rows, err = s.db.Query(query, params...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	defer rows.Close()

	ws := List{}

	for rows.Next() {
		var (
			whisper = &Whisper{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, whisper)
		if err != nil {
			return nil, err
		}

		ws = append(ws, whisper)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ws, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{
			pgClauseDeleted,
		}
		params = []interface{}{
			opts.Deleted,
		}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
	}

	if opts.ID != nil {
		clauses = append(clauses, pgClauseID)
		params = append(params, *opts.ID)
	}

	if len(opts.ProjectIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ProjectIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseProjectID, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if opts.Read != nil {
		clause, _, err := sqlx.In(pgClauseRead, []interface{}{*opts.Read})
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, *opts.Read)
	}

	if len(opts.SenderIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.SenderIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseSenderID, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	query := ""

	if len(clauses) > 0 {
		query = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	query = fmt.Sprintf("%s\n%s", query, pgOrderCreatedAt)

	if opts.Limit > 0 {
		query = fmt.Sprintf("%s\nLIMIT %d", query, opts.Limit)
	}

	return query, params, nil
}
