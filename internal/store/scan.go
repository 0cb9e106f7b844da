package store

import "asset-tracker-api/internal/models"

// argOf turns an Optional into a driver argument: explicit null becomes SQL
// NULL. Callers must check o.Set before using it.
func argOf[T any](o models.Optional[T]) any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// setClause pairs a column with its new value when building partial updates.
type setClause struct {
	col string
	val any
}
