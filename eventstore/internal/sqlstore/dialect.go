package sqlstore

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

const (
	colSequenceNumber = "sequence_number"
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"

	// sqliteTimestampLayout is fixed width so text comparison equals time comparison.
	sqliteTimestampLayout = "2006-01-02 15:04:05.000000000"
)

// Dialect holds what differs between the SQL engines.
type Dialect struct {
	// Name is the registered goqu dialect.
	Name string

	// Engine labels metrics and spans.
	Engine string

	// Predicate renders one payload predicate.
	Predicate func(p eventstore.FilterPredicate) (goqu.Expression, error)

	// Timestamp renders a time value for comparisons and inserts.
	Timestamp func(t time.Time) any

	// Schema returns the statements that create the journal table and its indexes.
	Schema func(table string) []string
}

// Postgres matches predicates with JSONB containment so the GIN index on payload is used.
var Postgres = Dialect{
	Name:   "postgres",
	Engine: "postgres",
	Predicate: func(p eventstore.FilterPredicate) (goqu.Expression, error) {
		containment, err := jsoniter.ConfigFastest.Marshal(map[string]string{p.Key(): p.Val()})
		if err != nil {
			return nil, err
		}

		return goqu.L(colPayload+" @> ?::jsonb", string(containment)), nil
	},
	Timestamp: func(t time.Time) any {
		return t.UTC()
	},
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGSERIAL PRIMARY KEY,
	%s TEXT NOT NULL,
	%s TIMESTAMPTZ NOT NULL,
	%s JSONB NOT NULL,
	%s JSONB NOT NULL
)`, table, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, table, colEventType, table, colEventType),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, table, colOccurredAt, table, colOccurredAt),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s USING gin (%s jsonb_path_ops)`, table, colPayload, table, colPayload),
		}
	},
}

// SQLite matches predicates with json_extract on the text payload.
var SQLite = Dialect{
	Name:   "sqlite3",
	Engine: "sqlite",
	Predicate: func(p eventstore.FilterPredicate) (goqu.Expression, error) {
		path, err := jsoniter.ConfigFastest.MarshalToString(p.Key())
		if err != nil {
			return nil, err
		}

		return goqu.L("json_extract("+colPayload+", ?) = ?", "$."+path, p.Val()), nil
	},
	Timestamp: func(t time.Time) any {
		return t.UTC().Format(sqliteTimestampLayout)
	},
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s INTEGER PRIMARY KEY AUTOINCREMENT,
	%s TEXT NOT NULL,
	%s TIMESTAMP NOT NULL,
	%s TEXT NOT NULL CHECK (json_valid(%s)),
	%s TEXT NOT NULL CHECK (json_valid(%s))
)`, table, colSequenceNumber, colEventType, colOccurredAt, colPayload, colPayload, colMetadata, colMetadata),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, table, colEventType, table, colEventType),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, table, colOccurredAt, table, colOccurredAt),
		}
	},
}
