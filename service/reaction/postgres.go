package reaction

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
	"github.com/jhlee0409/sidedish-sub001/platform/pg"
)

const (
	pgInsertReaction = `
		INSERT INTO %s.reactions(
			deleted, id, owner_id, project_id, type, created_at, updated_at
		) VALUES(
			$1, $2, $3, $4, $5, $6, $7
		)`
	pgUpdateReaction = `
		UPDATE
			%s.reactions
		SET
			deleted = $2,
			updated_at = $3
		WHERE
			id = $1`

	pgCountReactions      = `SELECT count(*) FROM %s.reactions %s`
	pgCountReactionsMulti = `
		SELECT
			project_id, type, count(*)
		FROM
			%s.reactions
		WHERE
			deleted = false
			AND project_id IN (?)
		GROUP BY
			project_id, type`
	pgListReactions = `
		SELECT
			deleted, id, owner_id, project_id, type, created_at, updated_at
		FROM
			%s.reactions
		%s`

	pgClauseBefore     = `updated_at < ?`
	pgClauseDeleted    = `deleted = ?`
	pgClauseIDs        = `id IN (?)`
	pgClauseOwnerIDs   = `owner_id IN (?)`
	pgClauseProjectIDs = `project_id IN (?)`
	pgClauseTypes      = `type IN (?)`

	pgOrderUpdatedAt = `ORDER BY updated_at DESC`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.reactions(
		deleted BOOL DEFAULT false,
		id BIGINT PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		project_id BIGINT NOT NULL,
		type INT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.reactions`

	pgIndexProjectByType = `
		CREATE INDEX
			%s
		ON
			%s.reactions
		USING
			btree(project_id, updated_at DESC)
		WHERE
			deleted = false
			AND type = %d`
	pgIndexOwner = `
		CREATE INDEX
			%s
		ON
			%s.reactions
		USING
			btree(project_id, owner_id, type)`
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

func (s *pgService) Count(ns string, opts QueryOptions) (uint, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	return s.countReactions(ns, where, params...)
}

func (s *pgService) CountMulti(ns string, opts QueryOptions) (CountsMap, error) {
	var (
		countsMap = CountsMap{}
		ps        = []interface{}{}
	)

	if len(opts.ProjectIDs) == 0 {
		return countsMap, nil
	}

	for _, id := range opts.ProjectIDs {
		countsMap[id] = Counts{}
		ps = append(ps, id)
	}

	query, _, err := sqlx.In(pgCountReactionsMulti, ps)
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
			t         Type
			count     uint64
		)

		err := rows.Scan(&projectID, &t, &count)
		if err != nil {
			return nil, err
		}

		counts := countsMap[projectID]

		switch t {
		case TypeClap:
			counts.Clap = count
		case TypeIdea:
			counts.Idea = count
		case TypeLike:
			counts.Like = count
		case TypeLove:
			counts.Love = count
		case TypeWow:
			counts.Wow = count
		}

		countsMap[projectID] = counts
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return countsMap, nil
}

func (s *pgService) Put(ns string, r *Reaction) (*Reaction, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if r.ID == 0 {
		return s.insert(ns, r)
	}

	return s.update(ns, r)
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listReactions(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),

		// Indexes
		pg.GuardIndex(ns, "reaction_project_like", pgIndexProjectByType, TypeLike),
		pg.GuardIndex(ns, "reaction_project_love", pgIndexProjectByType, TypeLove),
		pg.GuardIndex(ns, "reaction_project_clap", pgIndexProjectByType, TypeClap),
		pg.GuardIndex(ns, "reaction_project_wow", pgIndexProjectByType, TypeWow),
		pg.GuardIndex(ns, "reaction_project_idea", pgIndexProjectByType, TypeIdea),
		pg.GuardIndex(ns, "reaction_owner_type", pgIndexOwner),
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

func (s *pgService) countReactions(
	ns, where string,
	params ...interface{},
) (uint, error) {
	var (
		query = fmt.Sprintf(pgCountReactions, ns, where)

		count uint
	)

	err := s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return count, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) insert(ns string, r *Reaction) (*Reaction, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	ts, err := time.Parse(pg.TimeFormat, r.CreatedAt.UTC().Format(pg.TimeFormat))
	if err != nil {
		return nil, err
	}

	r.CreatedAt = ts
	r.UpdatedAt = ts

	id, err := flake.NextID(flakeNamespace(ns))
	if err != nil {
		return nil, err
	}

	r.ID = id

	var (
		params = []interface{}{
			r.Deleted,
			r.ID,
			r.OwnerID,
			r.ProjectID,
			r.Type,
			r.CreatedAt,
			r.UpdatedAt,
		}
		query = fmt.Sprintf(pgInsertReaction, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}

	return r, err
}

func (s *pgService) listReactions(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListReactions, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listReactions(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	rs := List{}

	for rows.Next() {
		reaction := &Reaction{}

		err := rows.Scan(
			&reaction.Deleted,
			&reaction.ID,
			&reaction.OwnerID,
			&reaction.ProjectID,
			&reaction.Type,
			&reaction.CreatedAt,
			&reaction.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		reaction.CreatedAt = reaction.CreatedAt.UTC()
		reaction.UpdatedAt = reaction.UpdatedAt.UTC()

		rs = append(rs, reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

func (s *pgService) update(ns string, r *Reaction) (*Reaction, error) {
	now, err := time.Parse(pg.TimeFormat, time.Now().UTC().Format(pg.TimeFormat))
	if err != nil {
		return nil, err
	}

	r.UpdatedAt = now

	var (
		params = []interface{}{
			r.ID,
			r.Deleted,
			r.UpdatedAt,
		}
		query = fmt.Sprintf(pgUpdateReaction, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}

	return r, err
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(pg.TimeFormat))
	}

	if opts.Deleted != nil {
		clause, _, err := sqlx.In(pgClauseDeleted, []interface{}{*opts.Deleted})
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, *opts.Deleted)
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

		clause, _, err := sqlx.In(pgClauseOwnerIDs, ps)
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

		clause, _, err := sqlx.In(pgClauseProjectIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Types) > 0 {
		ps := []interface{}{}

		for _, t := range opts.Types {
			ps = append(ps, t)
		}

		clause, _, err := sqlx.In(pgClauseTypes, ps)
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

	where = fmt.Sprintf("%s\n%s", where, pgOrderUpdatedAt)

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
