package comment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertComment = `INSERT INTO %s.comments(json_data) VALUES($1)`
	pgUpdateComment = `UPDATE %s.comments SET json_data = $1
		WHERE (json_data->>'id')::BIGINT = $2::BIGINT`

	pgCountComments = `SELECT count(json_data) FROM %s.comments
		%s`
	pgCountCommentsMulti = `
		SELECT
			json_data->>'project_id',
			count(*)
		FROM
			%s.comments
		WHERE
			(json_data->>'deleted')::BOOL = false
			AND (json_data->>'project_id')::BIGINT IN (?)
		GROUP BY
			json_data->>'project_id'`
	pgListComments = `SELECT json_data FROM %s.comments
		%s`

	pgClauseBefore    = `(json_data->>'created_at') < ?`
	pgClauseDeleted   = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseID        = `(json_data->>'id')::BIGINT = ?::BIGINT`
	pgClauseOwnerID   = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseProjectID = `(json_data->>'project_id')::BIGINT IN (?)`
	pgOrderCreatedAt  = `ORDER BY json_data->>'created_at' DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.comments
		(json_data JSONB NOT NULL)`

	pgCreateIndexCreatedAt = `CREATE INDEX %s ON %s.comments
		USING btree ((json_data->>'created_at') DESC)`
	pgCreateIndexID = `CREATE INDEX %s ON %s.comments
		USING btree (((json_data->>'id')::BIGINT))`
	pgCreateIndexOwnerID = `CREATE INDEX %s ON %s.comments
		USING btree (((json_data->>'owner_id')::BIGINT))`
	pgCreateIndexProjectID = `CREATE INDEX %s ON %s.comments
		USING btree (((json_data->>'project_id')::BIGINT))`

	pgDropTable = `DROP TABLE IF EXISTS %s.comments`
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

	return s.countComments(ns, where, params...)
}

func (s *pgService) CountMulti(
	ns string,
	projectIDs ...uint64,
) (CountsMap, error) {
	var (
		countsMap = CountsMap{}
		ps        = []interface{}{}
	)

	if len(projectIDs) == 0 {
		return countsMap, nil
	}

	for _, id := range projectIDs {
		countsMap[id] = 0
		ps = append(ps, id)
	}

	query, _, err := sqlx.In(pgCountCommentsMulti, ps)
	if err != nil {
		return nil, err
	}

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	query = fmt.Sprintf(query, ns)

	rows, err := s.db.Query(query, ps...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return countsMap, nil
		}

		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			projectID uint64
			count     uint64
		)

		err := rows.Scan(&projectID, &count)
		if err != nil {
			return nil, err
		}

		countsMap[projectID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return countsMap, nil
}

func (s *pgService) Put(ns string, comment *Comment) (*Comment, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateComment

		params []interface{}
	)

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if comment.ID != 0 {
		params = []interface{}{
			comment.ID,
		}

		cs, err := s.Query(ns, QueryOptions{
			ID: &comment.ID,
		})
		if err != nil {
			return nil, err
		}

		if len(cs) == 0 {
			return nil, ErrNotFound
		}

		comment.CreatedAt = cs[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = now
		} else {
			comment.CreatedAt = comment.CreatedAt.UTC()
		}

		comment.ID = id
		query = pgInsertComment
	}

	comment.UpdatedAt = now

	data, err := json.Marshal(comment)
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

	return comment, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listComments(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "comment_created_at", pgCreateIndexCreatedAt),
		pg.GuardIndex(ns, "comment_id", pgCreateIndexID),
		pg.GuardIndex(ns, "comment_owner_id", pgCreateIndexOwnerID),
		pg.GuardIndex(ns, "comment_project_id", pgCreateIndexProjectID),
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

func (s *pgService) countComments(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountComments, ns, where)
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

func (s *pgService) listComments(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListComments, ns, where)

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

	cs := List{}

	for rows.Next() {
		var (
			comment = &Comment{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, comment)
		if err != nil {
			return nil, err
		}

		cs = append(cs, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cs, nil
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

	if len(opts.OwnerIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.OwnerIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseOwnerID, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
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
