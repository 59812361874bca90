// Package dynamo keeps leads in a DynamoDB table keyed by numero. Items use
// the same attribute names as the SQL table.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ignite/lead-console/internal/config"
	"github.com/ignite/lead-console/internal/domain"
	"github.com/ignite/lead-console/internal/leadstore"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store implements leadstore.Store on DynamoDB.
type Store struct {
	api       API
	tableName string
}

// item is a lead as stored. created_at stays a string so the stored offset
// survives the round trip.
type item struct {
	ID            string         `dynamodbav:"numero"`
	Name          string         `dynamodbav:"nome"`
	CreatedAt     string         `dynamodbav:"created_at"`
	Paused        bool           `dynamodbav:"status_ia"`
	Pipeline      string         `dynamodbav:"pipeline"`
	FromAd        bool           `dynamodbav:"anuncio"`
	Qualification map[string]any `dynamodbav:"qualificacao"`
}

// NewClient creates a store from the default AWS credential chain.
func NewClient(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return New(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

// New creates a store over an existing client.
func New(api API, tableName string) *Store {
	return &Store{api: api, tableName: tableName}
}

// ListAll scans the whole table and orders the leads newest first. A scan
// has no order of its own, so sorting happens here.
func (s *Store) ListAll(ctx context.Context) ([]domain.Lead, error) {
	var out []domain.Lead
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("scanning leads: %w", err))
		}

		for _, av := range result.Items {
			var it item
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, leadstore.Wrap(leadstore.OpList, "", fmt.Errorf("unmarshaling lead: %w", err))
			}
			l, err := it.lead()
			if err != nil {
				return nil, leadstore.Wrap(leadstore.OpList, it.ID, err)
			}
			out = append(out, l)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (it item) lead() (domain.Lead, error) {
	created, err := domain.ParseTimestamp(it.CreatedAt)
	if err != nil {
		return domain.Lead{}, err
	}
	st, _ := domain.ParseStage(it.Pipeline)
	return domain.Lead{
		ID:            it.ID,
		Name:          it.Name,
		CreatedAt:     created,
		Paused:        it.Paused,
		Stage:         st,
		RawStage:      it.Pipeline,
		FromAd:        it.FromAd,
		Qualification: it.Qualification,
	}, nil
}

// ApplyUpdate sets the patched attributes on an existing item. The
// condition keeps UpdateItem from creating a new lead.
func (s *Store) ApplyUpdate(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		return leadstore.Wrap(leadstore.OpUpdate, id, err)
	}

	fields := patch.Fields()
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	names := map[string]string{"#id": domain.FieldID}
	values := make(map[string]types.AttributeValue, len(cols))
	sets := make([]string, 0, len(cols))
	for i, col := range cols {
		av, err := attributevalue.Marshal(fields[col])
		if err != nil {
			return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("marshaling %s: %w", col, err))
		}
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		names[name] = col
		values[value] = av
		sets = append(sets, name+" = "+value)
	}

	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			domain.FieldID: &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return leadstore.Wrap(leadstore.OpUpdate, id, leadstore.ErrNotFound)
		}
		return leadstore.Wrap(leadstore.OpUpdate, id, fmt.Errorf("updating lead in DynamoDB: %w", err))
	}
	return nil
}

// Ping describes the table.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	return leadstore.Wrap(leadstore.OpPing, "", err)
}
