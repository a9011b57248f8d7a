//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stargate/internal/astronaut/cache"
	"stargate/internal/astronaut/models"
	id "stargate/pkg/domain"
	"stargate/pkg/testutil/containers"
)

type RedisProjectionCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisProjectionCache
	ctx   context.Context
}

func TestRedisProjectionCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisProjectionCacheSuite))
}

func (s *RedisProjectionCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.New(s.redis.Client, cache.WithTTL(time.Minute))
	s.ctx = context.Background()
}

func (s *RedisProjectionCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisProjectionCacheSuite) fill(c *cache.RedisProjectionCache, pa *models.PersonAstronaut) {
	gen, err := c.Generation(s.ctx, pa.Name)
	s.Require().NoError(err)
	ok, err := c.Fill(s.ctx, pa, gen)
	s.Require().NoError(err)
	s.Require().True(ok)
}

func (s *RedisProjectionCacheSuite) TestRoundTrip() {
	rank, title := "CPT", "Pilot"
	start := models.DateOf(2020, time.January, 2)
	pa := &models.PersonAstronaut{
		PersonID: id.NewPersonID(), Name: "Ada",
		CurrentRank: &rank, CurrentDutyTitle: &title, CareerStartDate: &start,
	}
	s.fill(s.cache, pa)

	got, ok, err := s.cache.Get(s.ctx, "Ada")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(pa.PersonID, got.PersonID)
	s.Equal("Pilot", *got.CurrentDutyTitle)
	s.Equal("2020-01-02", got.CareerStartDate.String())
	s.Nil(got.CareerEndDate)
}

func (s *RedisProjectionCacheSuite) TestMissAndInvalidate() {
	_, ok, err := s.cache.Get(s.ctx, "Nobody")
	s.Require().NoError(err)
	s.False(ok)

	s.fill(s.cache, &models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "Grace"})
	s.Require().NoError(s.cache.Invalidate(s.ctx, "Grace", "Unknown"))

	_, ok, err = s.cache.Get(s.ctx, "Grace")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisProjectionCacheSuite) TestEntriesExpire() {
	short := cache.New(s.redis.Client, cache.WithTTL(time.Second))
	s.fill(short, &models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "Brief"})

	ttl, err := s.redis.Client.TTL(s.ctx, "stargate:person:Brief").Result()
	s.Require().NoError(err)
	s.LessOrEqual(ttl, time.Second)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisProjectionCacheSuite) TestFillAfterInvalidateIsSkipped() {
	gen, err := s.cache.Generation(s.ctx, "Stale")
	s.Require().NoError(err)
	s.Equal(int64(0), gen)

	s.Require().NoError(s.cache.Invalidate(s.ctx, "Stale"))

	ok, err := s.cache.Fill(s.ctx, &models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "Stale"}, gen)
	s.Require().NoError(err)
	s.False(ok)

	_, cached, err := s.cache.Get(s.ctx, "Stale")
	s.Require().NoError(err)
	s.False(cached)

	next, err := s.cache.Generation(s.ctx, "Stale")
	s.Require().NoError(err)
	s.Equal(gen+1, next)
}
