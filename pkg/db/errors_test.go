package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pairErr := fmt.Errorf("insert balance: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_branch_stocks_pair",
	})

	if !IsUniqueViolation(pairErr, "") {
		t.Fatalf("expected pg unique violation to match without constraint")
	}
	if !IsUniqueViolation(pairErr, "idx_branch_stocks_pair") {
		t.Fatalf("expected pg unique violation to match its constraint")
	}
	if IsUniqueViolation(pairErr, "idx_other") {
		t.Fatalf("must not match a different constraint")
	}

	notUnique := &pgconn.PgError{Code: "23503", ConstraintName: "fk_branch"}
	if IsUniqueViolation(notUnique, "") {
		t.Fatalf("foreign key violations are not unique violations")
	}

	plain := errors.New(`duplicate key value violates unique constraint "idx_branch_stocks_pair"`)
	if !IsUniqueViolation(plain, "") || !IsUniqueViolation(plain, "idx_branch_stocks_pair") {
		t.Fatalf("expected message fallback to match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error never matches")
	}
}
