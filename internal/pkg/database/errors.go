package database

import "errors"

// ErrUniqueViolation is returned by repositories when an insert hits a unique constraint.
// Inside a Postgres transaction the transaction is unusable afterwards.
var ErrUniqueViolation = errors.New("unique violation")
