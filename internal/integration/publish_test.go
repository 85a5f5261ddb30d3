//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/adapter/kafka"
	"github.com/couchcryptid/impact-sim-service/internal/config"
	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-impact-simulations"

// publishedMessage holds a deserialized message read from the results topic.
type publishedMessage struct {
	Event   domain.SimulationEvent
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from results topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var ev domain.SimulationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev), "unmarshal results message")

	return publishedMessage{Event: ev, Key: string(msg.Key), Headers: headers}
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func simulate(t *testing.T, diameterM float64, site domain.ImpactSite) domain.SimulationEvent {
	t.Helper()
	params := domain.NewAsteroidParameters(diameterM, 20)
	result, err := domain.Simulate(params, site)
	require.NoError(t, err)
	return domain.NewSimulationEvent(domain.SourceParams, params, site, result)
}

// TestPublisher verifies that a simulation event round-trips through Kafka
// with its key and headers.
func TestPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	ev := simulate(t, 150, domain.ImpactSite{Lat: 40.7128, Lon: -74.006})
	require.NoError(t, publisher.LoadBatch(ctx, []domain.SimulationEvent{ev}))

	pm := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, ev.ID, pm.Key)
	assert.Equal(t, "params", pm.Headers["source"])
	_, err := time.Parse(time.RFC3339, pm.Headers["simulated_at"])
	assert.NoError(t, err, "simulated_at should be valid RFC3339")
	assert.Equal(t, ev.Result.Energy.MegatonsTNT, pm.Event.Result.Energy.MegatonsTNT)
	assert.Equal(t, ev.Result.DamageZones, pm.Event.Result.DamageZones)
}

// TestPipelineEndToEnd wires the async publish loop to a real broker and
// checks every queued event arrives.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(publisher, discardLogger(), metrics, 10, 200*time.Millisecond)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	want := map[string]bool{}
	for i := range 25 {
		ev := simulate(t, float64(50+i*10), domain.ImpactSite{Lat: float64(i), Lon: float64(-i)})
		want[ev.ID] = true
		require.True(t, p.Enqueue(ev))
	}

	consumer := newConsumer(t, broker)
	got := map[string]bool{}
	for len(got) < len(want) {
		pm := readPublished(ctx, t, consumer)
		got[pm.Key] = true
		assert.Equal(t, pm.Key, pm.Event.ID)
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, want, got)
}
