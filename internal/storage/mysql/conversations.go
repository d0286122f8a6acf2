package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hoteldir/internal/domain"
)

// AppendTurns creates the session on first use and appends turns in one
// transaction, so a pair of turns is never split or lost.
func (r *Repo) AppendTurns(ctx context.Context, sessionID string, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	first, last := turns[0].Timestamp.UTC(), turns[len(turns)-1].Timestamp.UTC()
	if _, err := tx.ExecContext(ctx, upsertSessionSQL, sessionID, first, last); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	values := make([]string, 0, len(turns))
	args := make([]any, 0, len(turns)*4)
	for _, t := range turns {
		values = append(values, "(?,?,?,?)")
		args = append(args, sessionID, t.Role, t.Text, t.Timestamp.UTC())
	}
	if _, err := tx.ExecContext(ctx, insertMessagesPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) GetConversation(ctx context.Context, sessionID string) (domain.Conversation, error) {
	c := domain.Conversation{SessionID: sessionID}
	if err := r.db.QueryRowContext(ctx, getSessionSQL, sessionID).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Conversation{}, domain.ErrNotFound
		}
		return domain.Conversation{}, err
	}

	rows, err := r.db.QueryContext(ctx, listMessagesSQL, sessionID)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer rows.Close()

	c.Turns = []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.Timestamp); err != nil {
			return domain.Conversation{}, err
		}
		t.Timestamp = t.Timestamp.UTC()
		c.Turns = append(c.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}
