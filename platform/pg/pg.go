package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// MetaNamespace identifies the schema used to bundle tables not belonging to
// the application data set.
const MetaNamespace = "sd"

// TimeFormat can be used to extract and store time in a reproducible way.
const TimeFormat = "2006-01-02 15:04:05.000000 UTC"

const URLTest = "postgres://%s@127.0.0.1:5432/sidedish_test?sslmode=disable&connect_timeout=5"

const (
	fmtClause = "\nAND "
	fmtWHERE  = "WHERE\n%s"
)

// Errors returned as equivalents to the Postgres error codes.
var (
	ErrNotUnique        = errors.New("entry not unique")
	ErrRelationNotFound = errors.New("relation not found")
)

// Index creation needs to be idempotent, CREATE INDEX IF NOT EXISTS is not
// available everywhere we deploy, so guard with a conditional block.
// Taken from: http://dba.stackexchange.com/a/35626.
const guardIndex = `DO $$
		BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM pg_indexes WHERE schemaname = '%s' AND indexname = '%s'
		) THEN
		%s;
		END IF;
		END$$;`

// ClausesToWhere transforms a list of SQL clauses into a WHERE statement.
func ClausesToWhere(clauses ...string) string {
	return fmt.Sprintf(fmtWHERE, strings.Join(clauses, fmtClause))
}

// GuardIndex wraps an index creation query with a condition to prevent conflicts.
func GuardIndex(namespace, index, query string, args ...interface{}) string {
	as := append([]interface{}{index, namespace}, args...)

	return fmt.Sprintf(
		guardIndex,
		namespace,
		index,
		fmt.Sprintf(query, as...),
	)
}

// IsNotUnique indicates if err is ErrNotUnique.
func IsNotUnique(err error) bool {
	return err == ErrNotUnique
}

// IsRelationNotFound indicates if err is ErrRelationNotFound.
func IsRelationNotFound(err error) bool {
	return err == ErrRelationNotFound
}

// WrapError checks the given error against known Postgres error codes,
// otherwise returns the original error.
func WrapError(err error) error {
	if err, ok := err.(*pq.Error); ok {
		switch err.Code {
		case "23505":
			return ErrNotUnique
		case "42P01":
			return ErrRelationNotFound
		}
	}

	return err
}
