package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"graphboard/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
)

// errDBClosedMsg is the text of database/sql's unexported errDBClosed.
const errDBClosedMsg = "sql: database is closed"

// ClassifyDBError turns errors from database/sql and pgx into the pool error
// kinds, leaving query failures wrapped with op.
func ClassifyDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	var poolErr *common.PoolError
	if errors.As(err, &poolErr) {
		return err
	}

	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &common.PoolError{Kind: common.PoolTimeout, Err: fmt.Errorf("%s: %w", op, err)}
	case errors.Is(err, sql.ErrConnDone), strings.Contains(err.Error(), errDBClosedMsg):
		return &common.PoolError{Kind: common.PoolClosed, Err: fmt.Errorf("%s: %w", op, err)}
	case errors.As(err, &connectErr), errors.Is(err, driver.ErrBadConn):
		return &common.PoolError{Kind: common.PoolBackend, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("%s: %w", op, err)
}
