// Package sqlstore persists astronaut records in Postgres or SQLite through
// database/sql. Queries are written once with ? placeholders and rebound per
// dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	id "stargate/pkg/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is pure I/O; timeline rules live in the service.
type Store struct {
	db      *sql.DB
	q       querier
	dialect Dialect
}

// New wraps an open database. Run Migrate first.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

func (s *Store) withQuerier(q querier) *Store {
	return &Store{db: s.db, q: q, dialect: s.dialect}
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) FindPersonByName(ctx context.Context, name string) (*models.Person, error) {
	var p models.Person
	var pid uuid.UUID
	err := s.queryRow(ctx, `SELECT id, name FROM people WHERE name = ?`, name).Scan(&pid, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find person by name: %w", err)
	}
	p.ID = id.PersonID(pid)
	return &p, nil
}

func (s *Store) CreatePerson(ctx context.Context, p *models.Person) error {
	_, err := s.exec(ctx, `INSERT INTO people (id, name) VALUES (?, ?)`, uuid.UUID(p.ID), p.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Store) UpdatePerson(ctx context.Context, p *models.Person) error {
	res, err := s.exec(ctx, `UPDATE people SET name = ? WHERE id = ?`, p.Name, uuid.UUID(p.ID))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
		}
		return fmt.Errorf("update person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("person %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) FindDetail(ctx context.Context, personID id.PersonID) (*models.AstronautDetail, error) {
	row := s.queryRow(ctx, `
		SELECT person_id, current_rank, current_duty_title, career_start_date, career_end_date
		FROM astronaut_details
		WHERE person_id = ?`, uuid.UUID(personID))
	d, err := scanDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find astronaut detail: %w", err)
	}
	return d, nil
}

func (s *Store) SaveDetail(ctx context.Context, d *models.AstronautDetail) error {
	_, err := s.exec(ctx, `
		INSERT INTO astronaut_details (person_id, current_rank, current_duty_title, career_start_date, career_end_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (person_id) DO UPDATE SET
			current_rank = EXCLUDED.current_rank,
			current_duty_title = EXCLUDED.current_duty_title,
			career_start_date = EXCLUDED.career_start_date,
			career_end_date = EXCLUDED.career_end_date`,
		uuid.UUID(d.PersonID), d.CurrentRank, d.CurrentDutyTitle, d.CareerStartDate, d.CareerEndDate,
	)
	if err != nil {
		return fmt.Errorf("save astronaut detail: %w", err)
	}
	return nil
}

const dutyColumns = `id, person_id, rank, duty_title, duty_start_date, duty_end_date, recorded_at`

func (s *Store) FindDutyByTitleAndStart(ctx context.Context, personID id.PersonID, title string, start models.Date) (*models.AstronautDuty, error) {
	row := s.queryRow(ctx, `SELECT `+dutyColumns+`
		FROM astronaut_duties
		WHERE person_id = ? AND duty_title = ? AND duty_start_date = ?`,
		uuid.UUID(personID), title, start)
	d, err := scanDuty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find duty by title and start: %w", err)
	}
	return d, nil
}

func (s *Store) FindLatestDuty(ctx context.Context, personID id.PersonID) (*models.AstronautDuty, error) {
	row := s.queryRow(ctx, `SELECT `+dutyColumns+`
		FROM astronaut_duties
		WHERE person_id = ?
		ORDER BY duty_start_date DESC, recorded_at DESC
		LIMIT 1`, uuid.UUID(personID))
	d, err := scanDuty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find latest duty: %w", err)
	}
	return d, nil
}

func (s *Store) CreateDuty(ctx context.Context, d *models.AstronautDuty) error {
	_, err := s.exec(ctx, `INSERT INTO astronaut_duties (`+dutyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.UUID(d.ID), uuid.UUID(d.PersonID), d.Rank, d.DutyTitle, d.StartDate, d.EndDate, d.RecordedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duty %q on %s: %w", d.DutyTitle, d.StartDate, store.ErrAlreadyUsed)
		}
		return fmt.Errorf("create duty: %w", err)
	}
	return nil
}

func (s *Store) UpdateDuty(ctx context.Context, d *models.AstronautDuty) error {
	res, err := s.exec(ctx, `
		UPDATE astronaut_duties
		SET rank = ?, duty_title = ?, duty_start_date = ?, duty_end_date = ?
		WHERE id = ?`,
		d.Rank, d.DutyTitle, d.StartDate, d.EndDate, uuid.UUID(d.ID),
	)
	if err != nil {
		return fmt.Errorf("update duty: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update duty: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("duty %s: %w", d.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListDutiesByPerson(ctx context.Context, personID id.PersonID) ([]*models.AstronautDuty, error) {
	rows, err := s.query(ctx, `SELECT `+dutyColumns+`
		FROM astronaut_duties
		WHERE person_id = ?
		ORDER BY duty_start_date DESC, recorded_at DESC`, uuid.UUID(personID))
	if err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	defer rows.Close()

	duties := make([]*models.AstronautDuty, 0)
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan duty: %w", err)
		}
		duties = append(duties, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	return duties, nil
}

const personAstronautQuery = `
	SELECT p.id, p.name, d.current_rank, d.current_duty_title, d.career_start_date, d.career_end_date
	FROM people p
	LEFT JOIN astronaut_details d ON d.person_id = p.id`

func (s *Store) FindPersonAstronaut(ctx context.Context, name string) (*models.PersonAstronaut, error) {
	pa, err := scanPersonAstronaut(s.queryRow(ctx, personAstronautQuery+` WHERE p.name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find person astronaut: %w", err)
	}
	return pa, nil
}

func (s *Store) ListPeople(ctx context.Context) ([]*models.PersonAstronaut, error) {
	rows, err := s.query(ctx, personAstronautQuery+` ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	people := make([]*models.PersonAstronaut, 0)
	for rows.Next() {
		pa, err := scanPersonAstronaut(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, pa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}

func (s *Store) CountPeople(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return n, nil
}

func scanDetail(row scanner) (*models.AstronautDetail, error) {
	var d models.AstronautDetail
	var pid uuid.UUID
	var end nullDate
	if err := row.Scan(&pid, &d.CurrentRank, &d.CurrentDutyTitle, &d.CareerStartDate, &end); err != nil {
		return nil, err
	}
	d.PersonID = id.PersonID(pid)
	d.CareerEndDate = end.ptr()
	return &d, nil
}

func scanDuty(row scanner) (*models.AstronautDuty, error) {
	var d models.AstronautDuty
	var dutyID, pid uuid.UUID
	var end nullDate
	if err := row.Scan(&dutyID, &pid, &d.Rank, &d.DutyTitle, &d.StartDate, &end, &d.RecordedAt); err != nil {
		return nil, err
	}
	d.ID = id.DutyID(dutyID)
	d.PersonID = id.PersonID(pid)
	d.EndDate = end.ptr()
	return &d, nil
}

func scanPersonAstronaut(row scanner) (*models.PersonAstronaut, error) {
	var (
		pid         uuid.UUID
		name        string
		rank, title sql.NullString
		start, end  nullDate
	)
	if err := row.Scan(&pid, &name, &rank, &title, &start, &end); err != nil {
		return nil, err
	}
	pa := &models.PersonAstronaut{PersonID: id.PersonID(pid), Name: name}
	if rank.Valid {
		pa.CurrentRank = &rank.String
	}
	if title.Valid {
		pa.CurrentDutyTitle = &title.String
	}
	pa.CareerStartDate = start.ptr()
	pa.CareerEndDate = end.ptr()
	return pa, nil
}

// nullDate scans a nullable DATE or TEXT column.
type nullDate struct {
	date  models.Date
	valid bool
}

func (n *nullDate) Scan(src any) error {
	if src == nil {
		n.valid = false
		return nil
	}
	n.valid = true
	return n.date.Scan(src)
}

func (n nullDate) ptr() *models.Date {
	if !n.valid {
		return nil
	}
	return n.date.Ptr()
}

var _ store.Store = (*Store)(nil)
