package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rakesh-6305/project-store/internal/models"
)

// ErrInvalidTransition is returned when a request is not in a state that allows the change.
var ErrInvalidTransition = errors.New("store: request status does not allow this change")

func (s *Store) CreateRequest(req *models.ProjectRequest) (int64, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO project_requests (student_username, title, description, problem_statement, objectives, outcomes, output_idea, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, req.StudentUsername, req.Title, req.Description, req.ProblemStatement, req.Objectives, req.Outcomes, req.OutputIdea, models.RequestRequested)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertMedia(tx, requestPhotos, id, req.Photos); err != nil {
		return 0, err
	}
	if err := insertMedia(tx, requestVideos, id, req.Videos); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	req.ID = id
	req.Status = models.RequestRequested
	return id, nil
}

const requestColumns = `id, student_username, title, description, problem_statement, objectives, outcomes, output_idea, price, status, transaction_id, final_file`

func scanRequest(row interface{ Scan(...any) error }) (*models.ProjectRequest, error) {
	var r models.ProjectRequest
	err := row.Scan(&r.ID, &r.StudentUsername, &r.Title, &r.Description, &r.ProblemStatement, &r.Objectives, &r.Outcomes, &r.OutputIdea, &r.Price, &r.Status, &r.TransactionID, &r.FinalFile)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) queryRequests(query string, args ...any) ([]models.ProjectRequest, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.ProjectRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *r)
	}
	return reqs, rows.Err()
}

func (s *Store) ListRequestsByStudent(student string) ([]models.ProjectRequest, error) {
	return s.queryRequests(`SELECT `+requestColumns+` FROM project_requests WHERE student_username = ? ORDER BY id DESC`, student)
}

// ListAllRequests returns every request, newest first, with its photos and videos.
func (s *Store) ListAllRequests() ([]models.ProjectRequest, error) {
	reqs, err := s.queryRequests(`SELECT ` + requestColumns + ` FROM project_requests ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].Photos, err = listMedia(s.DB, requestPhotos, reqs[i].ID); err != nil {
			return nil, err
		}
		if reqs[i].Videos, err = listMedia(s.DB, requestVideos, reqs[i].ID); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

func (s *Store) GetRequest(id int64) (*models.ProjectRequest, error) {
	r, err := scanRequest(s.DB.QueryRow(`SELECT `+requestColumns+` FROM project_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// transition applies an update guarded by the allowed current statuses.
func (s *Store) transition(id int64, allowed []string, set string, args ...any) error {
	query := `UPDATE project_requests SET ` + set + ` WHERE id = ? AND status IN (` + placeholders(len(allowed)) + `)`
	params := append(append(args, id), toAny(allowed)...)
	err := requireRow(s.DB.Exec(query, params...))
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, getErr := s.GetRequest(id); getErr != nil {
		return getErr
	}
	return fmt.Errorf("request %d: %w", id, ErrInvalidTransition)
}

// SetRequestPrice quotes a price. Completed requests cannot be re-priced.
func (s *Store) SetRequestPrice(id, price int64) error {
	return s.transition(id,
		[]string{models.RequestRequested, models.RequestPriceSet, models.RequestPending},
		`price = ?, status = ?`, price, models.RequestPriceSet)
}

// SubmitRequestPayment records the student's transaction id once a price has been quoted.
func (s *Store) SubmitRequestPayment(id int64, transactionID string) error {
	return s.transition(id,
		[]string{models.RequestPriceSet, models.RequestPending},
		`transaction_id = ?, status = ?`, transactionID, models.RequestPending)
}

// CompleteRequest attaches the delivered file and marks the request Completed.
func (s *Store) CompleteRequest(id int64, finalFile string) error {
	if finalFile == "" {
		return fmt.Errorf("request %d: %w", id, ErrInvalidTransition)
	}
	return s.transition(id,
		[]string{models.RequestRequested, models.RequestPriceSet, models.RequestPending, models.RequestCompleted},
		`final_file = ?, status = ?`, finalFile, models.RequestCompleted)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
