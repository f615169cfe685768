package project

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertProject = `INSERT INTO %s.projects(json_data) VALUES($1)`
	pgUpdateProject = `UPDATE %s.projects SET json_data = $1
		WHERE (json_data->>'id')::BIGINT = $2::BIGINT`

	pgCountProjects = `SELECT count(json_data) FROM %s.projects
		%s`
	pgListProjects = `SELECT json_data FROM %s.projects
		%s`

	pgClauseBefore     = `(json_data->>'created_at') < ?`
	pgClauseDeleted    = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseID         = `(json_data->>'id')::BIGINT = ?::BIGINT`
	pgClauseIDs        = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseOwnerID    = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseTags       = `(json_data->'tags')::JSONB @> '[%s]'`
	pgClauseVisibility = `(json_data->>'visibility')::INT IN (?)`
	pgOrderCreatedAt   = `ORDER BY json_data->>'created_at' DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.projects
		(json_data JSONB NOT NULL)`

	pgCreateIndexCreatedAt = `CREATE INDEX %s ON %s.projects
		USING btree ((json_data->>'created_at') DESC)`
	pgCreateIndexID = `CREATE INDEX %s ON %s.projects
		USING btree (((json_data->>'id')::BIGINT))`
	pgCreateIndexOwnerID = `CREATE INDEX %s ON %s.projects
		USING btree (((json_data->>'owner_id')::BIGINT))`
	pgCreateIndexTags = `CREATE INDEX %s ON %s.projects
		USING gin ((json_data->'tags'))`
	pgCreateIndexShowcase = `
		CREATE INDEX
			%s
		ON
			%s.projects ((json_data->>'created_at') DESC)
		WHERE
			(json_data->>'deleted')::BOOL = false
			AND (json_data->>'visibility')::INT = 30`

	pgDropTable = `DROP TABLE IF EXISTS %s.projects`
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

	return s.countProjects(ns, where, params...)
}

func (s *pgService) Put(ns string, project *Project) (*Project, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateProject

		params []interface{}
	)

	if err := project.Validate(); err != nil {
		return nil, err
	}

	if project.ID != 0 {
		params = []interface{}{
			project.ID,
		}

		ps, err := s.Query(ns, QueryOptions{
			ID: &project.ID,
		})
		if err != nil {
			return nil, err
		}

		if len(ps) == 0 {
			return nil, ErrNotFound
		}

		project.CreatedAt = ps[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if project.CreatedAt.IsZero() {
			project.CreatedAt = now
		} else {
			project.CreatedAt = project.CreatedAt.UTC()
		}

		project.ID = id
		query = pgInsertProject
	}

	project.UpdatedAt = now

	data, err := json.Marshal(project)
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

	return project, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listProjects(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "project_created_at", pgCreateIndexCreatedAt),
		pg.GuardIndex(ns, "project_id", pgCreateIndexID),
		pg.GuardIndex(ns, "project_owner_id", pgCreateIndexOwnerID),
		pg.GuardIndex(ns, "project_tags", pgCreateIndexTags),
		pg.GuardIndex(ns, "project_showcase", pgCreateIndexShowcase),
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

func (s *pgService) countProjects(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountProjects, ns, where)
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

func (s *pgService) listProjects(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListProjects, ns, where)

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

	ps := List{}

	for rows.Next() {
		var (
			project = &Project{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, project)
		if err != nil {
			return nil, err
		}

		ps = append(ps, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ps, nil
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

	if len(opts.Tags) > 0 {
		ts := []string{}

		for _, t := range opts.Tags {
			ts = append(ts, fmt.Sprintf(`"%s"`, t))
		}

		clause := fmt.Sprintf(pgClauseTags, strings.Join(ts, ","))
		clauses = append(clauses, clause)
	}

	if len(opts.Visibilities) > 0 {
		ps := []interface{}{}

		for _, v := range opts.Visibilities {
			ps = append(ps, v)
		}

		clause, _, err := sqlx.In(pgClauseVisibility, ps)
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
