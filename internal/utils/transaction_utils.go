package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/MiguelSerea/taskmanagement/internal/interfaces"
	"github.com/MiguelSerea/taskmanagement/internal/schemas"
)

// BeginTransaction begins a new database transaction on the request context.
// If the transaction fails to begin, it logs and sends an error response and returns nil.
func BeginTransaction(c *gin.Context, pool interfaces.PgxPoolIface) pgx.Tx {
	LogMessageWithFields(c, "debug", "Beginning transaction...")

	tx, err := pool.Begin(c.Request.Context())
	if err != nil {
		WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil
	}

	return tx
}

// RollbackTransaction rolls back the given transaction if an error occurred.
// Rollback after a successful commit is a no-op, so calling it deferred is safe.
func RollbackTransaction(c *gin.Context, tx pgx.Tx, err error) {
	if err == nil {
		return
	}

	LogMessageWithFieldsAndError(c, "debug", "Rolling back transaction", err)
	if rbErr := tx.Rollback(c.Request.Context()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		LogMessageWithFieldsAndError(c, "error", "Error rolling back transaction", rbErr)
	}
}

// CommitTransaction attempts to commit the given transaction.
// If the commit fails, it logs the error, sends an error response, and returns the error.
func CommitTransaction(c *gin.Context, tx pgx.Tx) error {
	LogMessageWithFields(c, "debug", "Committing transaction...")

	if err := tx.Commit(c.Request.Context()); err != nil {
		WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	LogMessageWithFields(c, "debug", "Transaction committed")
	return nil
}
