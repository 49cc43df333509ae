package postgres

import (
	"strings"

	"stockbook/internal/core/apperror"
)

// ParseOrderBy translates an API ordering expression ("name", "-created_at")
// into a SQL ORDER BY fragment. Fields are whitelisted against allowedCols
// so caller input can never reach the query raw.
func ParseOrderBy(orderBy string, allowedCols []string, defaultOrder string) (string, error) {
	if strings.TrimSpace(orderBy) == "" {
		return defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	for _, col := range allowedCols {
		if col == field {
			return field + " " + direction, nil
		}
	}

	return "", apperror.NewValidation("invalid orderBy").
		WithDetail("orderBy", orderBy).
		WithDetail("field", field)
}
