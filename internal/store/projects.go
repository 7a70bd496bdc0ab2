package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rakesh-6305/project-store/internal/models"
)

// mediaTable describes one of the photo/video side tables.
type mediaTable struct {
	name, fk, path string
}

var (
	projectPhotos = mediaTable{"project_photos", "project_id", "photo_path"}
	projectVideos = mediaTable{"project_videos", "project_id", "video_path"}
	requestPhotos = mediaTable{"request_photos", "request_id", "photo_path"}
	requestVideos = mediaTable{"request_videos", "request_id", "video_path"}
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func insertMedia(tx execer, t mediaTable, ownerID int64, paths []string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?)`, t.name, t.fk, t.path)
	for _, p := range paths {
		if _, err := tx.Exec(query, ownerID, p); err != nil {
			return fmt.Errorf("insert %s: %w", t.name, err)
		}
	}
	return nil
}

func listMedia(q querier, t mediaTable, ownerID int64) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY id`, t.path, t.name, t.fk)
	rows, err := q.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// CreateProject stores the project and its media rows in one transaction and returns the new id.
func (s *Store) CreateProject(p *models.Project) (int64, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO projects (title, project_file, price, description, problem_statement, objectives, outcomes, technologies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Title, p.ProjectFile, p.Price, p.Description, p.ProblemStatement, p.Objectives, p.Outcomes, p.Technologies)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertMedia(tx, projectPhotos, id, p.Photos); err != nil {
		return 0, err
	}
	if err := insertMedia(tx, projectVideos, id, p.Videos); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

const projectColumns = `id, title, project_file, price, description, problem_statement, objectives, outcomes, technologies`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Title, &p.ProjectFile, &p.Price, &p.Description, &p.ProblemStatement, &p.Objectives, &p.Outcomes, &p.Technologies)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the catalog with the first photo of each project for the listing.
func (s *Store) ListProjects() ([]models.Project, error) {
	rows, err := s.DB.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		photos, err := listMedia(s.DB, projectPhotos, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Photos = photos
	}
	return projects, nil
}

// GetProjectByID loads one project with all of its photos and videos.
func (s *Store) GetProjectByID(id int64) (*models.Project, error) {
	p, err := scanProject(s.DB.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Photos, err = listMedia(s.DB, projectPhotos, id); err != nil {
		return nil, err
	}
	if p.Videos, err = listMedia(s.DB, projectVideos, id); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes the project and its media rows. Orders keep their history.
func (s *Store) DeleteProject(id int64) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range []mediaTable{projectPhotos, projectVideos} {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, t.name, t.fk), id); err != nil {
			return err
		}
	}
	if err := requireRow(tx.Exec(`DELETE FROM projects WHERE id = ?`, id)); err != nil {
		return err
	}
	return tx.Commit()
}
