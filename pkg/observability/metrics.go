package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatchClient is the subset of the CloudWatch API the metrics sink uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics publishes application metrics to CloudWatch
type Metrics struct {
	namespace string
	client    CloudWatchClient
}

// NewMetrics creates a metrics instance for the given namespace
func NewMetrics(namespace string, client CloudWatchClient) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordSaveDuration records how long a board save round-trip took
func (m *Metrics) RecordSaveDuration(ctx context.Context, boardID string, d time.Duration) {
	m.put(ctx, "BoardSaveDuration", float64(d.Milliseconds()), types.StandardUnitMilliseconds, boardID)
}

// IncrementSaveFailures counts a failed board save
func (m *Metrics) IncrementSaveFailures(ctx context.Context, boardID string) {
	m.put(ctx, "BoardSaveFailures", 1, types.StandardUnitCount, boardID)
}

// IncrementBoardsCreated counts a created board
func (m *Metrics) IncrementBoardsCreated(ctx context.Context) {
	m.put(ctx, "BoardsCreated", 1, types.StandardUnitCount, "")
}

// IncrementBoardsDeleted counts a deleted board
func (m *Metrics) IncrementBoardsDeleted(ctx context.Context) {
	m.put(ctx, "BoardsDeleted", 1, types.StandardUnitCount, "")
}

// put sends a single datum; metric delivery failures are swallowed since
// metrics must never fail a request.
func (m *Metrics) put(ctx context.Context, name string, value float64, unit types.StandardUnit, boardID string) {
	if m.client == nil {
		return
	}

	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
	}
	if boardID != "" {
		datum.Dimensions = []types.Dimension{
			{Name: aws.String("BoardID"), Value: aws.String(boardID)},
		}
	}

	_, _ = m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []types.MetricDatum{datum},
	})
}
