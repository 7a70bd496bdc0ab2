package store

import (
	"fmt"

	"github.com/Rakesh-6305/project-store/internal/models"
)

// Thread selects which chat log a message belongs to.
type Thread struct {
	table, fk string
}

var (
	RequestThread = Thread{"request_messages", "request_id"}
	OrderThread   = Thread{"order_messages", "order_id"}
)

// AddMessage appends a chat line to the thread identified by id.
func (s *Store) AddMessage(t Thread, id int64, sender, message string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, sender, message, timestamp) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`, t.table, t.fk)
	_, err := s.DB.Exec(query, id, sender, message)
	return err
}

// Messages returns the thread in timestamp order; rows written in the same second keep insertion order.
func (s *Store) Messages(t Thread, id int64) ([]models.Message, error) {
	query := fmt.Sprintf(`SELECT id, %s, sender, message, timestamp FROM %s WHERE %s = ? ORDER BY timestamp ASC, id ASC`, t.fk, t.table, t.fk)
	rows, err := s.DB.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Sender, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
