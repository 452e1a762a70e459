package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/alignlab/entalign/internal/annotation"
	"github.com/alignlab/entalign/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
// Callers treat it as "already exists" rather than a hard failure.
var ErrUniqueConstraint = &errors.AlignError{
	Code:    errors.ErrConflict,
	Status:  409,
	Message: "unique constraint violation",
}

// DBTX is the subset of *sql.DB and *sql.Tx the queries need, so the same
// query functions work standalone and inside a submission transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertText stores a new text. Returns ErrUniqueConstraint if the text_id
// is already present; text bodies are never overwritten.
func InsertText(ctx context.Context, q DBTX, t *annotation.Text) error {
	query := `
		INSERT INTO texts (id, text_id, body, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query, t.ID, t.TextID, t.Body, t.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// GetTextByTextID retrieves a text by its external identifier.
func GetTextByTextID(ctx context.Context, q DBTX, textID string) (*annotation.Text, error) {
	query := `
		SELECT id, text_id, body, created_at
		FROM texts
		WHERE text_id = ?
	`

	var t annotation.Text
	err := q.QueryRowContext(ctx, query, textID).Scan(&t.ID, &t.TextID, &t.Body, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(textID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &t, nil
}

// TextExists checks whether a text with the given external identifier exists.
func TextExists(ctx context.Context, q DBTX, textID string) (bool, error) {
	query := `SELECT 1 FROM texts WHERE text_id = ? LIMIT 1`

	var exists int
	err := q.QueryRowContext(ctx, query, textID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}

	return true, nil
}

// ListTexts returns all texts ordered by insertion time.
func ListTexts(ctx context.Context, q DBTX) ([]annotation.Text, error) {
	query := `
		SELECT id, text_id, body, created_at
		FROM texts
		ORDER BY created_at, text_id
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var texts []annotation.Text
	for rows.Next() {
		var t annotation.Text
		if err := rows.Scan(&t.ID, &t.TextID, &t.Body, &t.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return texts, nil
}

// InsertRecord stores a new annotation record. Returns ErrUniqueConstraint
// if a record already exists for the (user_id, text_id, category) triple;
// the unique index is the backstop against concurrent duplicate submissions.
func InsertRecord(ctx context.Context, q DBTX, r *annotation.Record) error {
	entitiesJSON, err := marshalList(r.Entities)
	if err != nil {
		return errors.NewInternal(err)
	}
	matchedJSON, err := marshalNullableList(r.Matched)
	if err != nil {
		return errors.NewInternal(err)
	}
	unmatchedJSON, err := marshalNullableList(r.Unmatched)
	if err != nil {
		return errors.NewInternal(err)
	}
	undetectedJSON, err := marshalNullableList(r.Undetected)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO annotations (
			id, user_id, text_id, category,
			entities_json, matched_json, unmatched_json, undetected_json,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = q.ExecContext(ctx, query,
		r.ID, r.UserID, r.TextID, r.Category,
		entitiesJSON, matchedJSON, unmatchedJSON, undetectedJSON,
		r.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	return nil
}

// RecordExists checks whether an annotation record exists for the triple.
func RecordExists(ctx context.Context, q DBTX, userID, textID, category string) (bool, error) {
	query := `
		SELECT 1 FROM annotations
		WHERE user_id = ? AND text_id = ? AND category = ?
		LIMIT 1
	`

	var exists int
	err := q.QueryRowContext(ctx, query, userID, textID, category).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}

	return true, nil
}

// GetRecordByID retrieves an annotation record by its ULID.
func GetRecordByID(ctx context.Context, q DBTX, id string) (*annotation.Record, error) {
	query := `
		SELECT id, user_id, text_id, category,
			entities_json, matched_json, unmatched_json, undetected_json,
			created_at
		FROM annotations
		WHERE id = ?
	`

	r, err := scanRecord(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// DeleteRecordOwned deletes an annotation record after verifying ownership.
// The ownership check runs inside the same transaction as the delete so a
// concurrent re-insert cannot expose another user's record to deletion.
func DeleteRecordOwned(ctx context.Context, database *sql.DB, id, userID string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM annotations WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return errors.NewNotFound(id)
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	if owner != userID {
		return errors.NewNotAuthorized("annotation belongs to another user")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// RecordWithText pairs an annotation record with its source text.
type RecordWithText struct {
	Record annotation.Record `json:"record"`
	Text   annotation.Text   `json:"text"`
}

// ListRecordsByUser returns all annotation records for a user, newest first,
// each joined with its text.
func ListRecordsByUser(ctx context.Context, q DBTX, userID string) ([]RecordWithText, error) {
	query := `
		SELECT a.id, a.user_id, a.text_id, a.category,
			a.entities_json, a.matched_json, a.unmatched_json, a.undetected_json,
			a.created_at,
			t.id, t.text_id, t.body, t.created_at
		FROM annotations a
		JOIN texts t ON t.text_id = a.text_id
		WHERE a.user_id = ?
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var results []RecordWithText
	for rows.Next() {
		var r annotation.Record
		var t annotation.Text
		var entitiesJSON string
		var matchedJSON, unmatchedJSON, undetectedJSON sql.NullString
		err := rows.Scan(
			&r.ID, &r.UserID, &r.TextID, &r.Category,
			&entitiesJSON, &matchedJSON, &unmatchedJSON, &undetectedJSON,
			&r.CreatedAt,
			&t.ID, &t.TextID, &t.Body, &t.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := unmarshalPartitions(&r, entitiesJSON, matchedJSON, unmatchedJSON, undetectedJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		results = append(results, RecordWithText{Record: r, Text: t})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return results, nil
}

// AnnotatedCategories returns the set of categories the user has annotated
// for one text.
func AnnotatedCategories(ctx context.Context, q DBTX, userID, textID string) (map[string]bool, error) {
	query := `
		SELECT category FROM annotations
		WHERE user_id = ? AND text_id = ?
	`

	rows, err := q.QueryContext(ctx, query, userID, textID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, errors.NewInternal(err)
		}
		done[category] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return done, nil
}

// AnnotatedPairs returns every (text_id, category) the user has annotated,
// as a nested set keyed by text_id.
func AnnotatedPairs(ctx context.Context, q DBTX, userID string) (map[string]map[string]bool, error) {
	query := `
		SELECT text_id, category FROM annotations
		WHERE user_id = ?
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	pairs := make(map[string]map[string]bool)
	for rows.Next() {
		var textID, category string
		if err := rows.Scan(&textID, &category); err != nil {
			return nil, errors.NewInternal(err)
		}
		if pairs[textID] == nil {
			pairs[textID] = make(map[string]bool)
		}
		pairs[textID][category] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return pairs, nil
}

// scanRecord scans a single annotation row.
func scanRecord(row *sql.Row) (*annotation.Record, error) {
	var (
		r                                          annotation.Record
		entitiesJSON                               string
		matchedJSON, unmatchedJSON, undetectedJSON sql.NullString
	)

	err := row.Scan(
		&r.ID, &r.UserID, &r.TextID, &r.Category,
		&entitiesJSON, &matchedJSON, &unmatchedJSON, &undetectedJSON,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalPartitions(&r, entitiesJSON, matchedJSON, unmatchedJSON, undetectedJSON); err != nil {
		return nil, err
	}

	return &r, nil
}

// unmarshalPartitions decodes the stored JSON partitions into the record.
func unmarshalPartitions(r *annotation.Record, entitiesJSON string, matchedJSON, unmatchedJSON, undetectedJSON sql.NullString) error {
	if err := json.Unmarshal([]byte(entitiesJSON), &r.Entities); err != nil {
		return err
	}
	for _, p := range []struct {
		src sql.NullString
		dst *[]string
	}{
		{matchedJSON, &r.Matched},
		{unmatchedJSON, &r.Unmatched},
		{undetectedJSON, &r.Undetected},
	} {
		if p.src.Valid && p.src.String != "" {
			if err := json.Unmarshal([]byte(p.src.String), p.dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// marshalList encodes a string list as JSON; nil encodes as an empty array.
func marshalList(xs []string) (string, error) {
	if xs == nil {
		xs = []string{}
	}
	data, err := json.Marshal(xs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// marshalNullableList encodes a string list as JSON, or NULL when empty.
func marshalNullableList(xs []string) (sql.NullString, error) {
	if len(xs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(xs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
