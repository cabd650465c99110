// Package adapters gives the SQL journals one Conn over pgxpool.Pool, sql.DB and sqlx.DB.
// The journal only ever runs a statement or reads rows positionally, so that is all a Conn offers.
// SQLite connections use the sql.DB variant.
package adapters
