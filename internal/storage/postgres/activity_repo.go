package postgres

import (
	"time"

	"github.com/google/uuid"
)

// Actions performed through the dashboard, kept for the activity feed.
const (
	ActionCreateDomain = "create_domain"
	ActionUpdateDomain = "update_domain"
	ActionDeleteDomain = "delete_domain"
	ActionCheckNow     = "check_now"
	ActionCheckAll     = "check_all"
	ActionCheckAuth    = "check_auth"
	ActionGenerateDKIM = "generate_dkim"
	ActionResolveAlert = "resolve_alert"
)

type ActivityEntry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserEmail string     `json:"user_email" db:"user_email"`
	DomainID  *uuid.UUID `json:"domain_id,omitempty" db:"domain_id"`
	Action    string     `json:"action" db:"action"`
	Detail    string     `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (db *DB) RecordActivity(entry *ActivityEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO activity_log (
            id, user_email, domain_id, action, detail, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6
        )`

	_, err := db.Exec(query,
		entry.ID, entry.UserEmail, entry.DomainID,
		entry.Action, entry.Detail, entry.CreatedAt,
	)

	return err
}

func (db *DB) ListActivity(userEmail string, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
        SELECT id, user_email, domain_id, action, detail, created_at
        FROM activity_log
        WHERE user_email = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	var entries []*ActivityEntry
	if err := db.Select(&entries, query, userEmail, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
