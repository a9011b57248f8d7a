package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
)

// numShards spreads lock keys over independent mutexes so units of work for
// different people do not wait on each other.
const numShards = 128

// DefaultTxTimeout applies when the caller's context has no deadline.
const DefaultTxTimeout = 5 * time.Second

// Tx runs units of work against a Store. Writes are staged in a view and
// applied under the store lock only when the work succeeds.
type Tx struct {
	shards  [numShards]sync.Mutex
	store   *Store
	timeout time.Duration
}

func NewTx(s *Store) *Tx {
	return &Tx{store: s, timeout: DefaultTxTimeout}
}

// WithTimeout overrides the default unit of work timeout.
func (t *Tx) WithTimeout(d time.Duration) *Tx {
	t.timeout = d
	return t
}

func (t *Tx) RunInTx(ctx context.Context, lockKeys []string, fn func(s store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shards := shardsFor(lockKeys)
	for _, i := range shards {
		t.shards[i].Lock()
	}
	defer func() {
		for j := len(shards) - 1; j >= 0; j-- {
			t.shards[shards[j]].Unlock()
		}
	}()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	view := newTxView(t.store)
	if err := fn(view); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	return view.commit()
}

// shardsFor returns the distinct shards for keys in ascending order, so two
// units of work always acquire shared shards in the same order.
func shardsFor(keys []string) []int {
	seen := make(map[int]struct{}, len(keys))
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		i := int(hashKey(k) % numShards)
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// hashKey is FNV-1a.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// txView reads through to the base store and shadows it with staged writes.
type txView struct {
	base *Store

	people        map[id.PersonID]*models.Person
	createdPeople map[id.PersonID]bool
	details       map[id.PersonID]*models.AstronautDetail
	duties        map[id.DutyID]*models.AstronautDuty
	createdDuties map[id.DutyID]bool
	// order keeps duty writes in the sequence they were made.
	order []id.DutyID
}

func newTxView(base *Store) *txView {
	return &txView{
		base:          base,
		people:        make(map[id.PersonID]*models.Person),
		createdPeople: make(map[id.PersonID]bool),
		details:       make(map[id.PersonID]*models.AstronautDetail),
		duties:        make(map[id.DutyID]*models.AstronautDuty),
		createdDuties: make(map[id.DutyID]bool),
	}
}

func (v *txView) FindPersonByName(ctx context.Context, name string) (*models.Person, error) {
	for _, p := range v.people {
		if p.Name == name {
			return copyPerson(p), nil
		}
	}
	p, err := v.base.FindPersonByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, shadowed := v.people[p.ID]; shadowed {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (v *txView) personExists(personID id.PersonID) bool {
	if _, ok := v.people[personID]; ok {
		return true
	}
	v.base.mu.RLock()
	defer v.base.mu.RUnlock()
	_, ok := v.base.people[personID]
	return ok
}

func (v *txView) CreatePerson(ctx context.Context, p *models.Person) error {
	if v.personExists(p.ID) {
		return fmt.Errorf("person %s: %w", p.ID, store.ErrAlreadyUsed)
	}
	if _, err := v.FindPersonByName(ctx, p.Name); err == nil {
		return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
	}
	v.people[p.ID] = copyPerson(p)
	v.createdPeople[p.ID] = true
	return nil
}

func (v *txView) UpdatePerson(ctx context.Context, p *models.Person) error {
	if !v.personExists(p.ID) {
		return fmt.Errorf("person %s: %w", p.ID, store.ErrNotFound)
	}
	if owner, err := v.FindPersonByName(ctx, p.Name); err == nil && owner.ID != p.ID {
		return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
	}
	v.people[p.ID] = copyPerson(p)
	return nil
}

func (v *txView) FindDetail(ctx context.Context, personID id.PersonID) (*models.AstronautDetail, error) {
	if d, ok := v.details[personID]; ok {
		return copyDetail(d), nil
	}
	return v.base.FindDetail(ctx, personID)
}

func (v *txView) SaveDetail(_ context.Context, d *models.AstronautDetail) error {
	if !v.personExists(d.PersonID) {
		return fmt.Errorf("detail for person %s: %w", d.PersonID, store.ErrNotFound)
	}
	v.details[d.PersonID] = copyDetail(d)
	return nil
}

// dutiesFor merges committed duties with staged ones.
func (v *txView) dutiesFor(personID id.PersonID) []*models.AstronautDuty {
	v.base.mu.RLock()
	merged := make([]*models.AstronautDuty, 0, len(v.base.duties[personID])+len(v.order))
	for _, d := range v.base.duties[personID] {
		if staged, ok := v.duties[d.ID]; ok {
			merged = append(merged, staged)
			continue
		}
		merged = append(merged, d)
	}
	v.base.mu.RUnlock()
	for _, dutyID := range v.order {
		if d := v.duties[dutyID]; v.createdDuties[dutyID] && d.PersonID == personID {
			merged = append(merged, d)
		}
	}
	return merged
}

func (v *txView) FindDutyByTitleAndStart(_ context.Context, personID id.PersonID, title string, start models.Date) (*models.AstronautDuty, error) {
	return findByTitleAndStart(v.dutiesFor(personID), title, start)
}

func (v *txView) FindLatestDuty(_ context.Context, personID id.PersonID) (*models.AstronautDuty, error) {
	return latestOf(v.dutiesFor(personID))
}

func (v *txView) CreateDuty(ctx context.Context, d *models.AstronautDuty) error {
	if !v.personExists(d.PersonID) {
		return fmt.Errorf("duty for person %s: %w", d.PersonID, store.ErrNotFound)
	}
	if _, err := v.FindDutyByTitleAndStart(ctx, d.PersonID, d.DutyTitle, d.StartDate); err == nil {
		return fmt.Errorf("duty %q on %s: %w", d.DutyTitle, d.StartDate, store.ErrAlreadyUsed)
	}
	v.duties[d.ID] = copyDuty(d)
	v.createdDuties[d.ID] = true
	v.order = append(v.order, d.ID)
	return nil
}

func (v *txView) UpdateDuty(_ context.Context, d *models.AstronautDuty) error {
	found := false
	for _, existing := range v.dutiesFor(d.PersonID) {
		if existing.ID == d.ID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("duty %s: %w", d.ID, store.ErrNotFound)
	}
	if _, staged := v.duties[d.ID]; !staged {
		v.order = append(v.order, d.ID)
	}
	v.duties[d.ID] = copyDuty(d)
	return nil
}

func (v *txView) ListDutiesByPerson(_ context.Context, personID id.PersonID) ([]*models.AstronautDuty, error) {
	return sortedDesc(v.dutiesFor(personID)), nil
}

func (v *txView) FindPersonAstronaut(ctx context.Context, name string) (*models.PersonAstronaut, error) {
	p, err := v.FindPersonByName(ctx, name)
	if err != nil {
		return nil, err
	}
	detail, err := v.FindDetail(ctx, p.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return models.NewPersonAstronaut(p, detail), nil
}

func (v *txView) ListPeople(ctx context.Context) ([]*models.PersonAstronaut, error) {
	committed, err := v.base.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.PersonAstronaut, 0, len(committed)+len(v.createdPeople))
	for _, pa := range committed {
		if _, shadowed := v.people[pa.PersonID]; shadowed {
			continue
		}
		if _, staged := v.details[pa.PersonID]; staged {
			continue
		}
		out = append(out, pa)
	}
	for personID := range v.people {
		p := v.people[personID]
		detail, _ := v.FindDetail(ctx, personID)
		out = append(out, models.NewPersonAstronaut(p, detail))
	}
	for personID, d := range v.details {
		if _, ok := v.people[personID]; ok {
			continue
		}
		v.base.mu.RLock()
		p, err := v.base.personByIDLocked(personID)
		v.base.mu.RUnlock()
		if err != nil {
			continue
		}
		out = append(out, models.NewPersonAstronaut(p, d))
	}
	sortByName(out)
	return out, nil
}

func (v *txView) CountPeople(ctx context.Context) (int, error) {
	n, err := v.base.CountPeople(ctx)
	return n + len(v.createdPeople), err
}

// commit applies staged writes atomically. Name uniqueness is checked again
// against committed state, which stands in for a unique index.
func (v *txView) commit() error {
	s := v.base
	s.mu.Lock()
	defer s.mu.Unlock()

	for personID, p := range v.people {
		if owner, taken := s.byName[p.Name]; taken && owner != personID {
			if _, movedAway := v.people[owner]; !movedAway || v.people[owner].Name == p.Name {
				return fmt.Errorf("person name %q: %w", p.Name, store.ErrAlreadyUsed)
			}
		}
	}

	for _, dutyID := range v.order {
		if v.createdDuties[dutyID] {
			continue
		}
		if !s.hasDutyLocked(v.duties[dutyID]) {
			return fmt.Errorf("duty %s: %w", dutyID, store.ErrNotFound)
		}
	}

	for personID, p := range v.people {
		if existing, ok := s.people[personID]; ok && s.byName[existing.Name] == personID {
			delete(s.byName, existing.Name)
		}
		s.people[personID] = p
	}
	for personID, p := range v.people {
		s.byName[p.Name] = personID
	}
	for personID, d := range v.details {
		s.details[personID] = d
	}
	for _, dutyID := range v.order {
		d := v.duties[dutyID]
		if v.createdDuties[dutyID] {
			s.duties[d.PersonID] = append(s.duties[d.PersonID], d)
			continue
		}
		_ = s.updateDutyLocked(d)
	}
	return nil
}

var _ store.Store = (*txView)(nil)
var _ store.Tx = (*Tx)(nil)
