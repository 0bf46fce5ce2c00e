package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/daymate/domain"
)

// translateError maps driver failures onto the domain taxonomy. Connection
// level problems become StoreUnavailable, anything else is internal.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrTaskNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Unavailable(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return domain.Unavailable(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.Unavailable(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08xxx connection exceptions, 57Pxx operator intervention (shutdown).
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P") {
			return domain.Unavailable(err)
		}
	}
	return domain.WrapError(domain.ErrCodeInternal, "task store query failed", err)
}

// validIDs drops ids that could never match a UUID primary key.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
