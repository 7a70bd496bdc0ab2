package store

import (
	"database/sql"
	"errors"

	"github.com/Rakesh-6305/project-store/internal/models"
)

// SubmitOrderPayment records a manual payment for a project. A student has at most one
// order per project: resubmitting resets the existing order to Pending with the new
// transaction id.
func (s *Store) SubmitOrderPayment(projectID int64, student, transactionID string) error {
	query := `
		INSERT INTO orders (project_id, student_username, status, transaction_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, student_username)
		DO UPDATE SET status = excluded.status, transaction_id = excluded.transaction_id
	`
	_, err := s.DB.Exec(query, projectID, student, models.OrderPending, transactionID)
	return err
}

const orderSelect = `
	SELECT o.id, o.project_id, COALESCE(p.title, 'Deleted project'), COALESCE(p.price, 0), o.student_username, o.status, o.transaction_id
	FROM orders o
	LEFT JOIN projects p ON o.project_id = p.id
`

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.ProjectID, &o.ProjectTitle, &o.ProjectPrice, &o.StudentUsername, &o.Status, &o.TransactionID); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrders returns every order, newest first, for the admin view.
func (s *Store) ListOrders() ([]models.Order, error) {
	rows, err := s.DB.Query(orderSelect + ` ORDER BY o.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (s *Store) ListOrdersByStudent(student string) ([]models.Order, error) {
	rows, err := s.DB.Query(orderSelect+` WHERE o.student_username = ? ORDER BY o.id DESC`, student)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (s *Store) getOrder(where string, args ...any) (*models.Order, error) {
	var o models.Order
	err := s.DB.QueryRow(orderSelect+` WHERE `+where, args...).
		Scan(&o.ID, &o.ProjectID, &o.ProjectTitle, &o.ProjectPrice, &o.StudentUsername, &o.Status, &o.TransactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) GetOrder(id int64) (*models.Order, error) {
	return s.getOrder(`o.id = ?`, id)
}

// GetOrderFor returns the student's order for a project.
func (s *Store) GetOrderFor(projectID int64, student string) (*models.Order, error) {
	return s.getOrder(`o.project_id = ? AND o.student_username = ?`, projectID, student)
}

func (s *Store) ConfirmOrder(id int64) error {
	return requireRow(s.DB.Exec(`UPDATE orders SET status = ? WHERE id = ?`, models.OrderConfirmed, id))
}
