// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"brocante/internal/apperr"
)

// reorderSiblings rewrites the order_index column of every row under one
// parent scope to the contiguous range base..base+n-1, in the order
// given. The id list must match the current sibling set exactly, with
// no omissions and no foreign ids, otherwise nothing is written and a
// validation error is returned. parentCol may be empty for tables whose
// scope is global (categories).
//
// Callers own the transaction; partial reorders are therefore never
// visible to concurrent readers.
func reorderSiblings(tx *sql.Tx, table, parentCol string, parentID uuid.UUID, orderedIDs []uuid.UUID, base int) error {
	current, err := siblingIDs(tx, table, parentCol, parentID)
	if err != nil {
		return err
	}

	if len(orderedIDs) != len(current) {
		return apperr.ValidationField("ids",
			fmt.Sprintf("expected all %d siblings, got %d", len(current), len(orderedIDs)))
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return apperr.ValidationField("ids", fmt.Sprintf("duplicate id %s", id))
		}
		seen[id] = true
		if !current[id] {
			return apperr.ValidationField("ids", fmt.Sprintf("id %s is not part of this scope", id))
		}
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`UPDATE %s SET order_index = $1 WHERE id = $2`, table))
	if err != nil {
		return fmt.Errorf("prepare reorder %s: %w", table, err)
	}
	defer stmt.Close()

	for i, id := range orderedIDs {
		if _, err := stmt.Exec(base+i, id); err != nil {
			return fmt.Errorf("reorder %s %s: %w", table, id, err)
		}
	}
	return nil
}

// siblingIDs returns the set of row ids under one parent scope.
func siblingIDs(tx *sql.Tx, table, parentCol string, parentID uuid.UUID) (map[uuid.UUID]bool, error) {
	query := fmt.Sprintf(`SELECT id FROM %s`, table)
	var rows *sql.Rows
	var err error
	if parentCol == "" {
		rows, err = tx.Query(query)
	} else {
		rows, err = tx.Query(query+fmt.Sprintf(` WHERE %s = $1`, parentCol), parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", table, err)
	}
	defer rows.Close()

	ids := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// compactOrder rewrites order_index values as base..base+n-1 preserving
// the current relative order. Called after deletions so sibling indices
// stay dense.
func compactOrder(tx *sql.Tx, table, parentCol string, parentID uuid.UUID, base int) error {
	query := fmt.Sprintf(`SELECT id FROM %s`, table)
	var rows *sql.Rows
	var err error
	if parentCol == "" {
		rows, err = tx.Query(query + ` ORDER BY order_index`)
	} else {
		rows, err = tx.Query(query+fmt.Sprintf(` WHERE %s = $1 ORDER BY order_index`, parentCol), parentID)
	}
	if err != nil {
		return fmt.Errorf("list %s for compaction: %w", table, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`UPDATE %s SET order_index = $1 WHERE id = $2 AND order_index <> $1`, table))
	if err != nil {
		return fmt.Errorf("prepare compact %s: %w", table, err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.Exec(base+i, id); err != nil {
			return fmt.Errorf("compact %s %s: %w", table, id, err)
		}
	}
	return nil
}
