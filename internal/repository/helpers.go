package repository

import (
	"github.com/doug-martin/goqu/v9"

	// Postgres dialect registration for goqu
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// dialect builds PostgreSQL-flavoured SQL for all repositories.
// Queries are always built Prepared so values travel as $n arguments.
var dialect = goqu.Dialect("postgres")
