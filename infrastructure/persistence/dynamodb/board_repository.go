// Package dynamodb persists boards in a single DynamoDB table. Each board
// is one item keyed by owner, with the document content stored in its
// interchange JSON form.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tabula-backend/application/ports"
	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/portable"
	pkgerrors "tabula-backend/pkg/errors"
	"tabula-backend/pkg/observability"
)

// BoardRepository implements ports.BoardRepository using DynamoDB
type BoardRepository struct {
	client    *dynamodb.Client
	tableName string
	registry  *nodetypes.Registry
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(
	client *dynamodb.Client,
	tableName string,
	registry *nodetypes.Registry,
	tracer *observability.Tracer,
	logger *zap.Logger,
) ports.BoardRepository {
	return &BoardRepository{
		client:    client,
		tableName: tableName,
		registry:  registry,
		tracer:    tracer,
		logger:    logger,
	}
}

// boardItem represents the DynamoDB item structure for a board
type boardItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	BoardID      string `dynamodbav:"BoardID"`
	UserID       string `dynamodbav:"UserID"`
	Name         string `dynamodbav:"Name"`
	Description  string `dynamodbav:"Description"`
	ThumbnailURL string `dynamodbav:"ThumbnailURL,omitempty"`
	NodeCount    int    `dynamodbav:"NodeCount"`
	EdgeCount    int    `dynamodbav:"EdgeCount"`
	Document     string `dynamodbav:"Document"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

func boardPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func boardSK(boardID string) string {
	return fmt.Sprintf("BOARD#%s", boardID)
}

// Save persists a board document to DynamoDB
func (r *BoardRepository) Save(ctx context.Context, doc *aggregates.Document) error {
	return r.trace(ctx, "BoardRepository.Save", func(ctx context.Context) error {
		content, err := portable.Export(doc)
		if err != nil {
			return pkgerrors.NewSaveError(doc.ID().String(), err)
		}

		item := boardItem{
			PK:           boardPK(doc.UserID()),
			SK:           boardSK(doc.ID().String()),
			EntityType:   "BOARD",
			BoardID:      doc.ID().String(),
			UserID:       doc.UserID(),
			Name:         doc.Name(),
			Description:  doc.Description(),
			ThumbnailURL: doc.ThumbnailURL(),
			NodeCount:    doc.NodeCount(),
			EdgeCount:    doc.EdgeCount(),
			Document:     string(content),
			CreatedAt:    doc.CreatedAt().Format(time.RFC3339),
			UpdatedAt:    doc.UpdatedAt().Format(time.RFC3339),
		}

		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return pkgerrors.NewSaveError(doc.ID().String(), err)
		}

		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		if err != nil {
			r.logger.Error("Failed to save board",
				zap.String("boardID", doc.ID().String()),
				zap.Error(err),
			)
			return pkgerrors.NewSaveError(doc.ID().String(), err)
		}

		r.logger.Debug("Board saved",
			zap.String("boardID", doc.ID().String()),
			zap.Int("nodes", doc.NodeCount()),
		)
		return nil
	})
}

// GetByID retrieves a board by its ID
func (r *BoardRepository) GetByID(ctx context.Context, userID string, id aggregates.BoardID) (*aggregates.Document, error) {
	var doc *aggregates.Document
	err := r.trace(ctx, "BoardRepository.GetByID", func(ctx context.Context) error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: boardPK(userID)},
				"SK": &types.AttributeValueMemberS{Value: boardSK(id.String())},
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("get board", err)
		}
		if out.Item == nil {
			return pkgerrors.NewNotFoundError("board")
		}

		var item boardItem
		if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
			return pkgerrors.NewDatabaseError("unmarshal board", err)
		}

		doc, err = r.materialize(item)
		return err
	})
	return doc, err
}

// List returns the user's boards ordered by most recently updated
func (r *BoardRepository) List(ctx context.Context, userID string, opts ports.ListOptions) ([]ports.BoardListItem, int, error) {
	var items []ports.BoardListItem
	var total int
	err := r.trace(ctx, "BoardRepository.List", func(ctx context.Context) error {
		keyCond := expression.Key("PK").Equal(expression.Value(boardPK(userID))).
			And(expression.Key("SK").BeginsWith("BOARD#"))
		proj := expression.NamesList(
			expression.Name("BoardID"),
			expression.Name("Name"),
			expression.Name("Description"),
			expression.Name("ThumbnailURL"),
			expression.Name("NodeCount"),
			expression.Name("CreatedAt"),
			expression.Name("UpdatedAt"),
		)
		expr, err := expression.NewBuilder().
			WithKeyCondition(keyCond).
			WithProjection(proj).
			Build()
		if err != nil {
			return pkgerrors.NewDatabaseError("build list expression", err)
		}

		all := []boardItem{}
		var startKey map[string]types.AttributeValue
		for {
			out, err := r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				KeyConditionExpression:    expr.KeyCondition(),
				ProjectionExpression:      expr.Projection(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("list boards", err)
			}

			var page []boardItem
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
				return pkgerrors.NewDatabaseError("unmarshal boards", err)
			}
			all = append(all, page...)

			if out.LastEvaluatedKey == nil {
				break
			}
			startKey = out.LastEvaluatedKey
		}

		sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt > all[j].UpdatedAt })
		total = len(all)

		start := opts.Offset
		if start > len(all) {
			start = len(all)
		}
		end := len(all)
		if opts.Limit > 0 && start+opts.Limit < end {
			end = start + opts.Limit
		}

		items = make([]ports.BoardListItem, 0, end-start)
		for _, it := range all[start:end] {
			created, _ := time.Parse(time.RFC3339, it.CreatedAt)
			updated, _ := time.Parse(time.RFC3339, it.UpdatedAt)
			items = append(items, ports.BoardListItem{
				ID:           it.BoardID,
				Name:         it.Name,
				Description:  it.Description,
				ThumbnailURL: it.ThumbnailURL,
				NodeCount:    it.NodeCount,
				CreatedAt:    created,
				UpdatedAt:    updated,
			})
		}
		return nil
	})
	return items, total, err
}

// Delete removes a board
func (r *BoardRepository) Delete(ctx context.Context, userID string, id aggregates.BoardID) error {
	return r.trace(ctx, "BoardRepository.Delete", func(ctx context.Context) error {
		cond := expression.AttributeExists(expression.Name("PK"))
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return pkgerrors.NewDatabaseError("build delete expression", err)
		}

		_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: boardPK(userID)},
				"SK": &types.AttributeValueMemberS{Value: boardSK(id.String())},
			},
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			var condFailed *types.ConditionalCheckFailedException
			if errors.As(err, &condFailed) {
				return pkgerrors.NewNotFoundError("board")
			}
			return pkgerrors.NewDatabaseError("delete board", err)
		}
		return nil
	})
}

// materialize turns a stored item back into a document aggregate
func (r *BoardRepository) materialize(item boardItem) (*aggregates.Document, error) {
	nodes, edges, viewport, err := portable.Import([]byte(item.Document), r.registry)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "stored board document is corrupt")
	}

	created, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return aggregates.ReconstructDocument(
		item.BoardID, item.UserID, item.Name, item.Description, item.ThumbnailURL,
		nodes, edges, viewport, created, updated, r.registry, nil,
	)
}

func (r *BoardRepository) trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if r.tracer == nil {
		return fn(ctx)
	}
	return r.tracer.TraceFunction(ctx, name, fn)
}
