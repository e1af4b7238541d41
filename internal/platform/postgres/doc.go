// Package postgres provides the PostgreSQL implementation of the
// store.GradingStore interface using database/sql with the pgx driver.
package postgres
