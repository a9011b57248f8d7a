// Package storetest holds behavioural checks every astronaut store must pass.
package storetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"stargate/internal/astronaut/models"
	"stargate/internal/astronaut/store"
	id "stargate/pkg/domain"
)

// Factory returns a fresh, empty store and its unit of work runner.
type Factory func() (store.Store, store.Tx)

// StoreSuite is embedded by implementation test suites.
type StoreSuite struct {
	suite.Suite
	NewStore Factory

	Store store.Store
	Tx    store.Tx
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Store, s.Tx = s.NewStore()
}

func (s *StoreSuite) createPerson(name string) *models.Person {
	p := &models.Person{ID: id.NewPersonID(), Name: name}
	s.Require().NoError(s.Store.CreatePerson(s.ctx, p))
	return p
}

func (s *StoreSuite) duty(p *models.Person, title string, start models.Date, recordedAt int64) *models.AstronautDuty {
	return &models.AstronautDuty{
		ID:         id.NewDutyID(),
		PersonID:   p.ID,
		Rank:       "CPT",
		DutyTitle:  title,
		StartDate:  start,
		RecordedAt: recordedAt,
	}
}

func (s *StoreSuite) TestPeople() {
	s.Run("creates and finds by exact name", func() {
		p := s.createPerson("Ada Lovelace")

		found, err := s.Store.FindPersonByName(s.ctx, "Ada Lovelace")
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)

		_, err = s.Store.FindPersonByName(s.ctx, "ada lovelace")
		s.ErrorIs(err, store.ErrNotFound)
	})

	s.Run("rejects duplicate name", func() {
		s.createPerson("Grace")
		err := s.Store.CreatePerson(s.ctx, &models.Person{ID: id.NewPersonID(), Name: "Grace"})
		s.ErrorIs(err, store.ErrAlreadyUsed)
	})

	s.Run("renames in place", func() {
		p := s.createPerson("Old Name")
		p.Name = "New Name"
		s.Require().NoError(s.Store.UpdatePerson(s.ctx, p))

		_, err := s.Store.FindPersonByName(s.ctx, "Old Name")
		s.ErrorIs(err, store.ErrNotFound)
		found, err := s.Store.FindPersonByName(s.ctx, "New Name")
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	})

	s.Run("rename onto a taken name fails", func() {
		s.createPerson("Taken")
		p := s.createPerson("Mover")
		p.Name = "Taken"
		s.ErrorIs(s.Store.UpdatePerson(s.ctx, p), store.ErrAlreadyUsed)
	})

	s.Run("update of unknown person fails", func() {
		err := s.Store.UpdatePerson(s.ctx, &models.Person{ID: id.NewPersonID(), Name: "Ghost"})
		s.ErrorIs(err, store.ErrNotFound)
	})
}

func (s *StoreSuite) TestDetails() {
	p := s.createPerson("Detail Person")

	_, err := s.Store.FindDetail(s.ctx, p.ID)
	s.Require().ErrorIs(err, store.ErrNotFound)

	start := models.DateOf(2020, time.March, 1)
	d := &models.AstronautDetail{PersonID: p.ID, CurrentRank: "1LT", CurrentDutyTitle: "Pilot", CareerStartDate: start}
	s.Require().NoError(s.Store.SaveDetail(s.ctx, d))

	end := models.DateOf(2024, time.June, 30)
	d.CurrentDutyTitle = models.DutyTitleRetired
	d.CareerEndDate = &end
	s.Require().NoError(s.Store.SaveDetail(s.ctx, d))

	found, err := s.Store.FindDetail(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.DutyTitleRetired, found.CurrentDutyTitle)
	s.True(found.CareerStartDate.Equal(start))
	s.Require().NotNil(found.CareerEndDate)
	s.True(found.CareerEndDate.Equal(end))
}

func (s *StoreSuite) TestDuties() {
	p := s.createPerson("Duty Person")
	other := s.createPerson("Other Person")
	jan := models.DateOf(2024, time.January, 1)
	feb := models.DateOf(2024, time.February, 1)

	_, err := s.Store.FindLatestDuty(s.ctx, p.ID)
	s.Require().ErrorIs(err, store.ErrNotFound)

	first := s.duty(p, "Pilot", jan, 1)
	second := s.duty(p, "Commander", feb, 2)
	s.Require().NoError(s.Store.CreateDuty(s.ctx, first))
	s.Require().NoError(s.Store.CreateDuty(s.ctx, second))
	s.Require().NoError(s.Store.CreateDuty(s.ctx, s.duty(other, "Pilot", jan, 3)))

	s.Run("latest is by start date", func() {
		latest, err := s.Store.FindLatestDuty(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(second.ID, latest.ID)
	})

	s.Run("duplicate lookup is scoped to the person", func() {
		found, err := s.Store.FindDutyByTitleAndStart(s.ctx, p.ID, "Pilot", jan)
		s.Require().NoError(err)
		s.Equal(first.ID, found.ID)

		_, err = s.Store.FindDutyByTitleAndStart(s.ctx, p.ID, "Pilot", feb)
		s.ErrorIs(err, store.ErrNotFound)
	})

	s.Run("update sets end date", func() {
		end := feb.AddDays(-1)
		first.EndDate = &end
		s.Require().NoError(s.Store.UpdateDuty(s.ctx, first))

		list, err := s.Store.ListDutiesByPerson(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(second.ID, list[0].ID)
		s.Nil(list[0].EndDate)
		s.Require().NotNil(list[1].EndDate)
		s.Equal("2024-01-31", list[1].EndDate.String())
	})

	s.Run("same start date falls back to recording order", func() {
		third := s.duty(p, "Engineer", feb, 10)
		s.Require().NoError(s.Store.CreateDuty(s.ctx, third))
		latest, err := s.Store.FindLatestDuty(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(third.ID, latest.ID)
	})

	s.Run("empty list is not nil", func() {
		list, err := s.Store.ListDutiesByPerson(s.ctx, id.NewPersonID())
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})
}

func (s *StoreSuite) TestProjections() {
	s.createPerson("Zed")
	a := s.createPerson("Amy")
	s.Require().NoError(s.Store.SaveDetail(s.ctx, &models.AstronautDetail{
		PersonID: a.ID, CurrentRank: "MAJ", CurrentDutyTitle: "Commander", CareerStartDate: models.DateOf(2019, time.May, 5),
	}))

	people, err := s.Store.ListPeople(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(people, 2)
	s.Equal("Amy", people[0].Name)
	s.Require().NotNil(people[0].CurrentRank)
	s.Equal("MAJ", *people[0].CurrentRank)
	s.Equal("Zed", people[1].Name)
	s.Nil(people[1].CurrentRank)
	s.Nil(people[1].CareerStartDate)

	pa, err := s.Store.FindPersonAstronaut(s.ctx, "Amy")
	s.Require().NoError(err)
	s.Equal("2019-05-05", pa.CareerStartDate.String())
	s.Nil(pa.CareerEndDate)

	_, err = s.Store.FindPersonAstronaut(s.ctx, "Nobody")
	s.ErrorIs(err, store.ErrNotFound)

	n, err := s.Store.CountPeople(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *StoreSuite) TestUnitOfWork() {
	errBoom := errors.New("boom")

	s.Run("commits all writes together", func() {
		p := &models.Person{ID: id.NewPersonID(), Name: "Committed"}
		err := s.Tx.RunInTx(s.ctx, []string{p.Name}, func(tx store.Store) error {
			if err := tx.CreatePerson(s.ctx, p); err != nil {
				return err
			}
			found, err := tx.FindPersonByName(s.ctx, p.Name)
			if err != nil {
				return err
			}
			s.Equal(p.ID, found.ID)
			if err := tx.SaveDetail(s.ctx, &models.AstronautDetail{
				PersonID: p.ID, CurrentRank: "CPT", CurrentDutyTitle: "Pilot", CareerStartDate: models.DateOf(2024, 1, 1),
			}); err != nil {
				return err
			}
			return tx.CreateDuty(s.ctx, s.duty(p, "Pilot", models.DateOf(2024, 1, 1), 1))
		})
		s.Require().NoError(err)

		pa, err := s.Store.FindPersonAstronaut(s.ctx, p.Name)
		s.Require().NoError(err)
		s.Require().NotNil(pa.CurrentDutyTitle)
		s.Equal("Pilot", *pa.CurrentDutyTitle)
		list, err := s.Store.ListDutiesByPerson(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("rolls back every write on error", func() {
		p := s.createPerson("Rollback")
		err := s.Tx.RunInTx(s.ctx, []string{p.Name}, func(tx store.Store) error {
			if err := tx.SaveDetail(s.ctx, &models.AstronautDetail{
				PersonID: p.ID, CurrentRank: "CPT", CurrentDutyTitle: "Pilot", CareerStartDate: models.DateOf(2024, 1, 1),
			}); err != nil {
				return err
			}
			if err := tx.CreateDuty(s.ctx, s.duty(p, "Pilot", models.DateOf(2024, 1, 1), 1)); err != nil {
				return err
			}
			renamed := *p
			renamed.Name = "Rollback Renamed"
			if err := tx.UpdatePerson(s.ctx, &renamed); err != nil {
				return err
			}
			return errBoom
		})
		s.Require().ErrorIs(err, errBoom)

		_, err = s.Store.FindDetail(s.ctx, p.ID)
		s.ErrorIs(err, store.ErrNotFound)
		list, err := s.Store.ListDutiesByPerson(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Empty(list)
		_, err = s.Store.FindPersonByName(s.ctx, "Rollback")
		s.NoError(err)
	})

	s.Run("rejects cancelled context", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		called := false
		err := s.Tx.RunInTx(ctx, []string{"x"}, func(store.Store) error {
			called = true
			return nil
		})
		s.Error(err)
		s.False(called)
	})
}
