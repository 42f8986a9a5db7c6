// Package dynamodb persists learner journeys and path statistics in a
// single DynamoDB table keyed by record type.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"skillmap-backend/domain/core/entities"
	pkgerrors "skillmap-backend/pkg/errors"
)

const (
	recordTypeJourney = "JOURNEY"
	recordTypeSegment = "SEGMENT"
	recordTypeStats   = "STATS"
)

// journeyRecord is the stored shape of a learner journey.
type journeyRecord struct {
	PK               string   `dynamodbav:"PK"`
	RecordType       string   `dynamodbav:"RecordType"`
	LearnerID        string   `dynamodbav:"LearnerID"`
	CompletedNodeIDs []string `dynamodbav:"CompletedNodeIDs"`
	CurrentNodeID    string   `dynamodbav:"CurrentNodeID"`
	UpdatedAt        string   `dynamodbav:"UpdatedAt"`
}

// segmentRecord is the stored shape of a path segment.
type segmentRecord struct {
	PK                 string  `dynamodbav:"PK"`
	RecordType         string  `dynamodbav:"RecordType"`
	FromID             string  `dynamodbav:"FromID"`
	ToID               string  `dynamodbav:"ToID"`
	Frequency          int     `dynamodbav:"Frequency"`
	AverageTimeMinutes float64 `dynamodbav:"AverageTimeMinutes"`
	SuccessRate        float64 `dynamodbav:"SuccessRate"`
}

// statsRecord is the stored shape of per-node statistics.
type statsRecord struct {
	PK             string  `dynamodbav:"PK"`
	RecordType     string  `dynamodbav:"RecordType"`
	NodeID         string  `dynamodbav:"NodeID"`
	Completions    int     `dynamodbav:"Completions"`
	AverageTime    float64 `dynamodbav:"AverageTime"`
	CompletionRate float64 `dynamodbav:"CompletionRate"`
	AverageRating  float64 `dynamodbav:"AverageRating"`
}

// JourneyStore implements ports.JourneyStore on DynamoDB. Writes go through
// a circuit breaker so a struggling table sheds load instead of stalling
// request handlers.
type JourneyStore struct {
	client    *dynamodb.Client
	tableName string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewJourneyStore creates a store over the given table.
func NewJourneyStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *JourneyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamodb-journey-store",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &JourneyStore{
		client:    client,
		tableName: tableName,
		breaker:   breaker,
		logger:    logger,
	}
}

// SaveJourney upserts the journey record for a learner.
func (s *JourneyStore) SaveJourney(ctx context.Context, journey *entities.LearnerJourney) error {
	record := journeyRecord{
		PK:               recordTypeJourney + "#" + journey.LearnerID,
		RecordType:       recordTypeJourney,
		LearnerID:        journey.LearnerID,
		CompletedNodeIDs: journey.CompletedNodeIDs,
		CurrentNodeID:    journey.CurrentNodeID,
		UpdatedAt:        journey.UpdatedAt.Format(time.RFC3339),
	}
	if err := s.putItem(ctx, record); err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}

	s.logger.Debug("journey saved",
		zap.String("learnerId", journey.LearnerID),
		zap.Int("completions", len(journey.CompletedNodeIDs)),
	)
	return nil
}

// SaveSegment upserts the segment record for a transition.
func (s *JourneyStore) SaveSegment(ctx context.Context, segment entities.PathSegment) error {
	record := segmentRecord{
		PK:                 recordTypeSegment + "#" + segment.Key(),
		RecordType:         recordTypeSegment,
		FromID:             segment.FromID,
		ToID:               segment.ToID,
		Frequency:          segment.Frequency,
		AverageTimeMinutes: segment.AverageTimeMinutes,
		SuccessRate:        segment.SuccessRate,
	}
	if err := s.putItem(ctx, record); err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}
	return nil
}

func (s *JourneyStore) putItem(ctx context.Context, record interface{}) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewInternal("failed to marshal record", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      item,
		})
	})
	if err != nil {
		var throughput *types.ProvisionedThroughputExceededException
		if errors.As(err, &throughput) {
			return pkgerrors.NewInternal("table throttled", err)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			s.logger.Warn("dynamodb call failed",
				zap.String("errorCode", apiErr.ErrorCode()),
				zap.String("errorMessage", apiErr.ErrorMessage()),
			)
		}
		return pkgerrors.NewInternal("dynamodb put failed", err)
	}
	return nil
}
