package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// jobColumns are the columns a constraint name may mention.
var jobColumns = []string{
	"title", "description", "category", "budget", "posted_date", "job_type",
	"experience_level", "deadline", "duration", "skills",
}

// detailKey matches `Key (title)=(Go Developer) already exists.`
var detailKey = regexp.MustCompile(`Key \(([^)]+)\)=`)

type pgRule struct {
	code     ErrorCode
	fieldMsg string
	message  string
}

var pgRules = map[string]pgRule{
	pgerrcode.UniqueViolation: {
		code:     ErrCodeConflict,
		fieldMsg: "This value already exists. Please choose a different one.",
		message:  "This value already exists. Please choose a different one.",
	},
	pgerrcode.CheckViolation: {
		code:     ErrCodeValidation,
		fieldMsg: "This field has an invalid value.",
		message:  "Invalid data. Please check your input.",
	},
	pgerrcode.NotNullViolation: {
		code:     ErrCodeValidation,
		fieldMsg: "This field is required.",
		message:  "Required field is missing. Please check your input.",
	},
	pgerrcode.StringDataRightTruncationDataException: {
		code:     ErrCodeValidation,
		fieldMsg: "This value is too long.",
		message:  "A value is too long. Please shorten your input.",
	},
}

// MapDBError turns job store failures into AppErrors. Unrecognised errors
// are returned unchanged.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	rule, ok := pgRules[pgErr.Code]
	if !ok {
		return &AppError{Code: ErrCodeInternal, Message: "A database error occurred. Please try again.", Cause: pgErr}
	}

	field := offendingColumn(pgErr)
	if field == "" {
		return &AppError{Code: rule.code, Message: rule.message, Cause: pgErr}
	}
	return &AppError{Code: rule.code, Message: rule.fieldMsg, Field: field, Cause: pgErr}
}

// offendingColumn finds the column from the error itself, its detail text,
// or a constraint name that mentions exactly one known column.
func offendingColumn(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := detailKey.FindStringSubmatch(pgErr.Detail); len(m) == 2 && !strings.Contains(m[1], ",") {
		return m[1]
	}
	return columnFromConstraint(pgErr.ConstraintName)
}

func columnFromConstraint(name string) string {
	if name == "" {
		return ""
	}
	var found string
	for _, col := range jobColumns {
		if !containsSegment(name, col) {
			continue
		}
		if found != "" {
			return ""
		}
		found = col
	}
	return found
}

// containsSegment reports whether col appears in name bounded by underscores.
func containsSegment(name, col string) bool {
	parts := strings.Split(name, "_")
	width := len(strings.Split(col, "_"))
	for i := 0; i+width <= len(parts); i++ {
		if strings.Join(parts[i:i+width], "_") == col {
			return true
		}
	}
	return false
}
