package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *fakeSession) Context() context.Context { return context.Background() }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	msgs chan *sarama.ConsumerMessage
}

func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func claimOf(offsets ...int64) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(offsets))
	for _, o := range offsets {
		ch <- &sarama.ConsumerMessage{Topic: "t", Offset: o}
	}
	close(ch)
	return fakeClaim{msgs: ch}
}

type handlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f handlerFunc) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}

func TestConsumeClaimMarksHandledMessages(t *testing.T) {
	sess := &fakeSession{}
	h := groupHandler{handler: handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil })}

	require.NoError(t, h.ConsumeClaim(sess, claimOf(1, 2, 3)))
	assert.Equal(t, []int64{1, 2, 3}, sess.marked)
}

func TestConsumeClaimStopsAtFailure(t *testing.T) {
	sess := &fakeSession{}
	boom := errors.New("boom")
	h := groupHandler{
		handler: handlerFunc(func(_ context.Context, msg *sarama.ConsumerMessage) error {
			if msg.Offset == 2 {
				return boom
			}
			return nil
		}),
		logger: NewConsumerFrom(nil, nil, nil).logger,
	}

	err := h.ConsumeClaim(sess, claimOf(1, 2, 3))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{1}, sess.marked)
}

func TestRunRequiresTopics(t *testing.T) {
	c := NewConsumerFrom(nil, nil, nil)
	assert.ErrorIs(t, c.Run(context.Background(), nil), ErrNoTopics)
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer(ConsumerConfig{GroupID: "g"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}
