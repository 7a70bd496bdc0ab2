package store

import (
	"database/sql"
	"errors"

	"github.com/Rakesh-6305/project-store/internal/models"
)

// Account tables. Students live in users, administrators in admin.
const (
	StudentAccounts = "users"
	AdminAccounts   = "admin"
)

// GetAccount looks up a user by name; a missing user is (nil, nil).
func (s *Store) GetAccount(table, username string) (*models.User, error) {
	query := `SELECT id, username, password FROM ` + accountTable(table) + ` WHERE username = ?`
	row := s.DB.QueryRow(query, username)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount stores a new account with an already hashed password.
func (s *Store) CreateAccount(table, username, hashedPassword string) error {
	query := `INSERT INTO ` + accountTable(table) + ` (username, password) VALUES (?, ?)`
	_, err := s.DB.Exec(query, username, hashedPassword)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// SetPassword replaces the stored hash for an existing account.
func (s *Store) SetPassword(table, username, hashedPassword string) error {
	query := `UPDATE ` + accountTable(table) + ` SET password = ? WHERE username = ?`
	return requireRow(s.DB.Exec(query, hashedPassword, username))
}

func accountTable(table string) string {
	if table == AdminAccounts {
		return AdminAccounts
	}
	return StudentAccounts
}
