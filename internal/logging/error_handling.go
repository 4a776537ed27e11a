package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes a resource and logs any errors that occur
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err,
			slog.String("operation", operation),
			slog.String("component", "resource_management"))
	}
}

// SafeRollbackWithLogging rolls back a transaction and logs any errors that occur.
// Rolling back a committed transaction is expected when deferred and is not logged.
func SafeRollbackWithLogging(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}

	if err := tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return
		}

		LogError(logger, "failed to rollback transaction", err,
			slog.String("operation", operation),
			slog.String("component", "database"))
	}
}

// HandleDeferredError runs cleanup from a defer. A cleanup failure is logged and, when the
// enclosing function is otherwise succeeding, returned through errp.
func HandleDeferredError(errp *error, cleanup func() error, logger *slog.Logger, operation string) {
	if cleanup == nil {
		return
	}

	err := cleanup()
	if err == nil {
		return
	}
	LogError(logger, "deferred cleanup failed", err,
		slog.String("operation", operation),
		slog.String("component", "deferred_cleanup"))

	if errp != nil && *errp == nil {
		*errp = fmt.Errorf("%s: %w", operation, err)
	}
}
