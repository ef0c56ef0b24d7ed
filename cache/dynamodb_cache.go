package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ammiranda/notetree/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// DefaultTableName is the DynamoDB table used when none is configured
const DefaultTableName = "NoteTreeCache"

// DynamoDBAPI defines the interface for DynamoDB operations
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// CacheItem is the stored shape of one cached forest.
// Data holds the forest JSON because Node is an interface.
type CacheItem struct {
	Key       string `dynamodbav:"key"`
	Data      string `dynamodbav:"data"`
	Timestamp int64  `dynamodbav:"timestamp"`
	TTL       int64  `dynamodbav:"ttl"`
}

// DynamoDBCache implements CacheProvider using DynamoDB
type DynamoDBCache struct {
	client    DynamoDBAPI
	tableName string
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewDynamoDBCache creates a new DynamoDB cache provider from the default AWS config
func NewDynamoDBCache(tableName string) (*DynamoDBCache, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}

	return NewDynamoDBCacheWithClient(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewDynamoDBCacheWithClient creates a new DynamoDB cache provider with a custom client
func NewDynamoDBCacheWithClient(client DynamoDBAPI, tableName string) *DynamoDBCache {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return &DynamoDBCache{
		client:    client,
		tableName: tableName,
		cacheTTL:  5 * time.Minute,
		now:       time.Now,
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (c *DynamoDBCache) Initialize() error {
	ctx := context.TODO()

	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("key"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("key"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}

func (c *DynamoDBCache) itemKey(campaignID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: "forest:" + campaignID},
	}
}

// GetForest retrieves the forest from DynamoDB cache if available
func (c *DynamoDBCache) GetForest(campaignID string) (models.Forest, bool) {
	ctx := context.TODO()

	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(campaignID),
	})
	if err != nil || result.Item == nil {
		return nil, false
	}

	var item CacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false
	}

	// Expired items are deleted eagerly; DynamoDB TTL sweeps are not immediate
	if c.now().Unix() > item.TTL {
		c.InvalidateCache(campaignID)
		return nil, false
	}

	var forest models.Forest
	if err := json.Unmarshal([]byte(item.Data), &forest); err != nil {
		c.InvalidateCache(campaignID)
		return nil, false
	}
	return forest, true
}

// SetForest stores the forest in DynamoDB cache
func (c *DynamoDBCache) SetForest(campaignID string, forest models.Forest) {
	ctx := context.TODO()
	now := c.now()

	data, err := json.Marshal(forest)
	if err != nil {
		c.InvalidateCache(campaignID)
		return
	}

	item := CacheItem{
		Key:       "forest:" + campaignID,
		Data:      string(data),
		Timestamp: now.Unix(),
		TTL:       now.Add(c.cacheTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		// If we can't marshal the item, invalidate the cache
		c.InvalidateCache(campaignID)
		return
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	})
	if err != nil {
		// If we can't store the item, invalidate the cache
		logrus.WithError(err).WithField("campaign", campaignID).Warn("Error caching forest in dynamodb")
		c.InvalidateCache(campaignID)
	}
}

// InvalidateCache removes the forest from DynamoDB cache
func (c *DynamoDBCache) InvalidateCache(campaignID string) {
	ctx := context.Background()
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(campaignID),
	})
	if err != nil {
		logrus.WithError(err).WithField("campaign", campaignID).Warn("Error invalidating dynamodb cache")
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *DynamoDBCache) SetCacheTTL(ttl time.Duration) {
	c.cacheTTL = ttl
}
