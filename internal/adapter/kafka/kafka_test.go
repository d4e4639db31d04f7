package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/mannings-editor/internal/config"
	"github.com/couchcryptid/mannings-editor/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() domain.Report {
	completed := time.Date(2024, 9, 1, 12, 0, 5, 0, time.UTC)
	hi, lo := 0.5, 0.5
	return domain.Report{
		AttributeFile:   "fort.13",
		MeshFile:        "fort.14",
		OutputFile:      "fort.13.modified",
		Criterion:       "in box x[-95.5,-94] y[28.5,30]",
		Modifier:        "multiply by 10",
		MeshNodes:       3,
		Records:         3,
		Modified:        2,
		MinValue:        &lo,
		MaxValue:        &hi,
		StartedAt:       completed.Add(-5 * time.Second),
		CompletedAt:     completed,
		DurationSeconds: 5,
	}
}

func TestSerializeToMessage(t *testing.T) {
	report := testReport()

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte("fort.13.modified"), msg.Key)
	assert.Contains(t, string(msg.Value), `"modified":2`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "criterion", msg.Headers[0].Key)
	assert.Equal(t, []byte(report.Criterion), msg.Headers[0].Value)
	assert.Equal(t, "modifier", msg.Headers[1].Key)
	assert.Equal(t, []byte("multiply by 10"), msg.Headers[1].Value)
	assert.Equal(t, "completed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-09-01T12:00:05Z"), msg.Headers[2].Value)

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	if diff := cmp.Diff(report, decoded); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeToMessage_OmitsEmptyRange(t *testing.T) {
	report := testReport()
	report.Modified = 0
	report.MinValue, report.MaxValue = nil, nil

	msg, err := serializeToMessage(report)
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), "min_value")
	assert.NotContains(t, string(msg.Value), "max_value")
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaReportTopic: "mannings-edits"}
	p := NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "kafka", p.Name())
	assert.Equal(t, "mannings-edits", p.writer.Topic)
	assert.True(t, p.writer.AllowAutoTopicCreation)
}
