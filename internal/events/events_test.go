package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rentops-lab/rentops/internal/core/booking"
	"github.com/rentops-lab/rentops/internal/core/calendar"
	"github.com/rentops-lab/rentops/internal/metrics"
)

func sampleCommitment() booking.Commitment {
	return booking.Commitment{
		ID:     "c-1",
		UnitID: "unit-7",
		Interval: calendar.NewInterval(
			calendar.Date{Year: 2025, Month: time.March, Day: 10},
			calendar.Date{Year: 2025, Month: time.March, Day: 12},
		),
		Kind:   booking.KindStay,
		Status: booking.StatusConfirmed,
		Label:  "Smith",
	}
}

func TestCommitmentCreated(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	evt := CommitmentCreated(sampleCommitment(), now)

	require.NotEmpty(t, evt.ID)
	require.Equal(t, TypeCommitmentCreated, evt.Type)
	require.Equal(t, "unit-7", evt.Key)
	require.Equal(t, now, evt.OccurredAt)

	payload, ok := evt.Data.(CommitmentPayload)
	require.True(t, ok)
	require.Equal(t, "2025-03-10", payload.StartDate)
	require.Equal(t, "2025-03-12", payload.EndDate)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	m := metrics.New()
	pub := NewKafkaPublisherFromProducer(producer, "rentops.commitments", m)

	evt := CommitmentCreated(sampleCommitment(), time.Now())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "rentops.commitments" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "unit-7" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded["type"] != TypeCommitmentCreated {
			return errors.New("unexpected type in payload")
		}
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), evt))
	require.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues(TypeCommitmentCreated, "ok")))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	m := metrics.New()
	pub := NewKafkaPublisherFromProducer(producer, "rentops.commitments", m)

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := pub.Publish(context.Background(), CommitmentCreated(sampleCommitment(), time.Now()))
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues(TypeCommitmentCreated, "error")))
	require.NoError(t, pub.Close())
}

func TestNoop(t *testing.T) {
	var pub Publisher = Noop{}
	require.NoError(t, pub.Publish(context.Background(), Event{}))
	require.NoError(t, pub.Close())
}
