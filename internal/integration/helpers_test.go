//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/couchcryptid/rainfall-intel/internal/adapter/modelfile"
	"github.com/couchcryptid/rainfall-intel/internal/dataset"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/gateway"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
	"github.com/couchcryptid/rainfall-intel/internal/service"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("rainfall-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

// newTestService wires the dataset fixture and the linear model fixture the
// same way the service binary does.
func newTestService(t *testing.T) *service.Service {
	t.Helper()

	records, err := dataset.NewLoader(dataset.DefaultSchema(), discardLogger()).
		LoadFile(filepath.Join("..", "dataset", "testdata", "district_monthly.csv"))
	require.NoError(t, err)

	model, err := modelfile.Load(filepath.Join("..", "adapter", "modelfile", "testdata", "linear.yaml"))
	require.NoError(t, err)

	gw := gateway.New(gateway.Models{Rainfall: model}, observability.NewMetricsForTesting(), discardLogger())
	return service.New(domain.NewLocationIndex(records), gw, discardLogger())
}
