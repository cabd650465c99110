// Package postgresengine stores the operation journal in PostgreSQL.
//
// The journal can run on a pgxpool.Pool, a sql.DB (lib/pq) or a sqlx.DB. Payload predicates
// use JSONB containment, which the GIN index created by CreateSchema serves.
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithTableName("library_events"),
//		postgresengine.WithLogger(logger),
//	)
//	_ = store.CreateSchema(ctx)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
package postgresengine
