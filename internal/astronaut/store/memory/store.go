// Package memory is an in-process astronaut store used by tests and the
// memory database driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	id "stargate/pkg/domain"
)

// Store keeps records in maps guarded by one RWMutex. Returned records are
// copies; callers may modify them freely.
type Store struct {
	mu      sync.RWMutex
	people  map[id.PersonID]*models.Person
	byName  map[string]id.PersonID
	details map[id.PersonID]*models.AstronautDetail
	duties  map[id.PersonID][]*models.AstronautDuty
}

func New() *Store {
	return &Store{
		people:  make(map[id.PersonID]*models.Person),
		byName:  make(map[string]id.PersonID),
		details: make(map[id.PersonID]*models.AstronautDetail),
		duties:  make(map[id.PersonID][]*models.AstronautDuty),
	}
}

func (s *Store) FindPersonByName(_ context.Context, name string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personByNameLocked(name)
}

func (s *Store) personByNameLocked(name string) (*models.Person, error) {
	pid, ok := s.byName[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyPerson(s.people[pid]), nil
}

func (s *Store) personByIDLocked(personID id.PersonID) (*models.Person, error) {
	p, ok := s.people[personID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyPerson(p), nil
}

func (s *Store) CreatePerson(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putPersonLocked(p, true)
}

func (s *Store) UpdatePerson(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putPersonLocked(p, false)
}

// putPersonLocked enforces the unique name index.
func (s *Store) putPersonLocked(p *models.Person, create bool) error {
	existing, exists := s.people[p.ID]
	if create && exists {
		return fmt.Errorf("person %s: %w", p.ID, store.ErrAlreadyUsed)
	}
	if !create && !exists {
		return fmt.Errorf("person %s: %w", p.ID, store.ErrNotFound)
	}
	if owner, taken := s.byName[p.Name]; taken && owner != p.ID {
		return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
	}
	if exists {
		delete(s.byName, existing.Name)
	}
	s.people[p.ID] = copyPerson(p)
	s.byName[p.Name] = p.ID
	return nil
}

func (s *Store) FindDetail(_ context.Context, personID id.PersonID) (*models.AstronautDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.details[personID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyDetail(d), nil
}

func (s *Store) SaveDetail(_ context.Context, d *models.AstronautDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[d.PersonID]; !ok {
		return fmt.Errorf("detail for person %s: %w", d.PersonID, store.ErrNotFound)
	}
	s.details[d.PersonID] = copyDetail(d)
	return nil
}

func (s *Store) FindDutyByTitleAndStart(_ context.Context, personID id.PersonID, title string, start models.Date) (*models.AstronautDuty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByTitleAndStart(s.duties[personID], title, start)
}

func (s *Store) FindLatestDuty(_ context.Context, personID id.PersonID) (*models.AstronautDuty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latestOf(s.duties[personID])
}

func (s *Store) CreateDuty(_ context.Context, d *models.AstronautDuty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createDutyLocked(d)
}

func (s *Store) createDutyLocked(d *models.AstronautDuty) error {
	if _, ok := s.people[d.PersonID]; !ok {
		return fmt.Errorf("duty for person %s: %w", d.PersonID, store.ErrNotFound)
	}
	for _, existing := range s.duties[d.PersonID] {
		if existing.ID == d.ID {
			return fmt.Errorf("duty %s: %w", d.ID, store.ErrAlreadyUsed)
		}
		if existing.DutyTitle == d.DutyTitle && existing.StartDate.Equal(d.StartDate) {
			return fmt.Errorf("duty %q on %s: %w", d.DutyTitle, d.StartDate, store.ErrAlreadyUsed)
		}
	}
	s.duties[d.PersonID] = append(s.duties[d.PersonID], copyDuty(d))
	return nil
}

func (s *Store) UpdateDuty(_ context.Context, d *models.AstronautDuty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateDutyLocked(d)
}

func (s *Store) updateDutyLocked(d *models.AstronautDuty) error {
	for i, existing := range s.duties[d.PersonID] {
		if existing.ID == d.ID {
			s.duties[d.PersonID][i] = copyDuty(d)
			return nil
		}
	}
	return fmt.Errorf("duty %s: %w", d.ID, store.ErrNotFound)
}

func (s *Store) hasDutyLocked(d *models.AstronautDuty) bool {
	for _, existing := range s.duties[d.PersonID] {
		if existing.ID == d.ID {
			return true
		}
	}
	return false
}

func (s *Store) ListDutiesByPerson(_ context.Context, personID id.PersonID) ([]*models.AstronautDuty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedDesc(s.duties[personID]), nil
}

func (s *Store) FindPersonAstronaut(_ context.Context, name string) (*models.PersonAstronaut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.personByNameLocked(name)
	if err != nil {
		return nil, err
	}
	return models.NewPersonAstronaut(p, s.details[p.ID]), nil
}

func (s *Store) ListPeople(_ context.Context) ([]*models.PersonAstronaut, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PersonAstronaut, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, models.NewPersonAstronaut(p, s.details[p.ID]))
	}
	sortByName(out)
	return out, nil
}

func (s *Store) CountPeople(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people), nil
}

func findByTitleAndStart(duties []*models.AstronautDuty, title string, start models.Date) (*models.AstronautDuty, error) {
	for _, d := range duties {
		if d.DutyTitle == title && d.StartDate.Equal(start) {
			return copyDuty(d), nil
		}
	}
	return nil, store.ErrNotFound
}

func latestOf(duties []*models.AstronautDuty) (*models.AstronautDuty, error) {
	sorted := sortedDesc(duties)
	if len(sorted) == 0 {
		return nil, store.ErrNotFound
	}
	return sorted[0], nil
}

func sortedDesc(duties []*models.AstronautDuty) []*models.AstronautDuty {
	out := make([]*models.AstronautDuty, 0, len(duties))
	for _, d := range duties {
		out = append(out, copyDuty(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].RecordedAt > out[j].RecordedAt
	})
	return out
}

func sortByName(people []*models.PersonAstronaut) {
	sort.Slice(people, func(i, j int) bool { return people[i].Name < people[j].Name })
}

func copyPerson(p *models.Person) *models.Person {
	c := *p
	return &c
}

func copyDetail(d *models.AstronautDetail) *models.AstronautDetail {
	c := *d
	if d.CareerEndDate != nil {
		end := *d.CareerEndDate
		c.CareerEndDate = &end
	}
	return &c
}

func copyDuty(d *models.AstronautDuty) *models.AstronautDuty {
	c := *d
	if d.EndDate != nil {
		end := *d.EndDate
		c.EndDate = &end
	}
	return &c
}

var _ store.Store = (*Store)(nil)
