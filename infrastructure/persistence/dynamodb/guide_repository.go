package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tabula-backend/application/ports"
	pkgerrors "tabula-backend/pkg/errors"
)

// GuideMarkerRepository implements ports.GuideMarkerRepository using
// DynamoDB. Each shown guide is one marker item alongside the user's
// boards.
type GuideMarkerRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewGuideMarkerRepository creates a new GuideMarkerRepository
func NewGuideMarkerRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.GuideMarkerRepository {
	return &GuideMarkerRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func guideSK(boardID, guide string) string {
	return fmt.Sprintf("GUIDE#%s#%s", boardID, guide)
}

// IsShown reports whether the guide was already shown for the board
func (r *GuideMarkerRepository) IsShown(ctx context.Context, userID, boardID, guide string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: boardPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: guideSK(boardID, guide)},
		},
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("get guide marker", err)
	}
	return out.Item != nil, nil
}

// MarkShown records that the guide was shown for the board
func (r *GuideMarkerRepository) MarkShown(ctx context.Context, userID, boardID, guide string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: boardPK(userID)},
			"SK":         &types.AttributeValueMemberS{Value: guideSK(boardID, guide)},
			"EntityType": &types.AttributeValueMemberS{Value: "GUIDE_MARKER"},
			"ShownAt":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("put guide marker", err)
	}
	return nil
}
