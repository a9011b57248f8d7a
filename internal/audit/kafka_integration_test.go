//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"stargate/internal/audit"
	"stargate/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	broker    string
	publisher *audit.KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	p, err := audit.NewKafkaPublisher([]string{s.broker}, "stargate.audit.test")
	s.Require().NoError(err)
	s.Require().NoError(p.EnsureTopic(context.Background(), 1, 1))
	s.publisher = p
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		_ = s.publisher.Close(context.Background())
	}
}

func (s *KafkaPublisherSuite) TestEmitProducesKeyedJSON() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.publisher.Ping(ctx))
	s.Require().NoError(s.publisher.Emit(ctx, audit.Event{
		Action:     audit.ActionDutyRecorded,
		Outcome:    audit.OutcomeAccepted,
		PersonID:   "0b5f3c1e-2a4d-4f6b-9c8e-7d1a2b3c4d5e",
		PersonName: "Ada",
		DutyTitle:  "Pilot",
	}))
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics("stargate.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal("0b5f3c1e-2a4d-4f6b-9c8e-7d1a2b3c4d5e", string(records[0].Key))
	s.Equal(audit.ActionDutyRecorded, got.Action)
	s.Equal("Pilot", got.DutyTitle)
}
