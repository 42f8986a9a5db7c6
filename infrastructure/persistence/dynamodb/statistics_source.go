package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"skillmap-backend/domain/core/entities"
)

// StatisticsSource loads a one-shot snapshot of node statistics and path
// segments from the table and serves it in memory. The path analyzer reads
// the source only at construction, so the snapshot is taken once at startup.
type StatisticsSource struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	stats    map[string]entities.NodeStats
	segments []entities.PathSegment
}

// NewStatisticsSource creates an empty source; call Load before handing it
// to the path analyzer.
func NewStatisticsSource(client *dynamodb.Client, tableName string, logger *zap.Logger) *StatisticsSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsSource{
		client:    client,
		tableName: tableName,
		logger:    logger,
		stats:     make(map[string]entities.NodeStats),
	}
}

// Load scans the stats and segment records into the snapshot.
func (s *StatisticsSource) Load(ctx context.Context) error {
	if err := s.loadStats(ctx); err != nil {
		return err
	}
	if err := s.loadSegments(ctx); err != nil {
		return err
	}

	s.logger.Info("path statistics loaded",
		zap.Int("nodeStats", len(s.stats)),
		zap.Int("segments", len(s.segments)),
	)
	return nil
}

func (s *StatisticsSource) loadStats(ctx context.Context) error {
	items, err := s.scanByType(ctx, recordTypeStats)
	if err != nil {
		return fmt.Errorf("failed to load node statistics: %w", err)
	}

	for _, item := range items {
		var record statsRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return fmt.Errorf("failed to unmarshal stats record: %w", err)
		}
		s.stats[record.NodeID] = entities.NodeStats{
			Completions:    record.Completions,
			AverageTime:    record.AverageTime,
			CompletionRate: record.CompletionRate,
			AverageRating:  record.AverageRating,
		}
	}
	return nil
}

func (s *StatisticsSource) loadSegments(ctx context.Context) error {
	items, err := s.scanByType(ctx, recordTypeSegment)
	if err != nil {
		return fmt.Errorf("failed to load path segments: %w", err)
	}

	for _, item := range items {
		var record segmentRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return fmt.Errorf("failed to unmarshal segment record: %w", err)
		}
		s.segments = append(s.segments, entities.PathSegment{
			FromID:             record.FromID,
			ToID:               record.ToID,
			Frequency:          record.Frequency,
			AverageTimeMinutes: record.AverageTimeMinutes,
			SuccessRate:        record.SuccessRate,
		})
	}
	return nil
}

func (s *StatisticsSource) scanByType(ctx context.Context, recordType string) ([]map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("RecordType").Equal(expression.Value(recordType))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// NodeStats returns snapshot statistics for one node.
func (s *StatisticsSource) NodeStats(nodeID string) (entities.NodeStats, bool) {
	stats, ok := s.stats[nodeID]
	return stats, ok
}

// Segments returns the snapshot segments.
func (s *StatisticsSource) Segments() []entities.PathSegment {
	return append([]entities.PathSegment(nil), s.segments...)
}
