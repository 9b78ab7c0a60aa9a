package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrijs2005/blobkeeper/internal/common"
	"github.com/dmitrijs2005/blobkeeper/internal/config"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// treeItem is the DynamoDB shape of one keyed-tree record: partition key is
// the tree path, sort key is the generated ordered key.
type treeItem struct {
	Path      string `dynamodbav:"path"`
	Key       string `dynamodbav:"key"`
	Record    Record `dynamodbav:"record"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

// KeyedTreeStore implements Store over a DynamoDB table. Write allocates a
// unique ordered key under dbPath; Remove takes the fully-qualified
// "path/key" location.
type KeyedTreeStore struct {
	client dynamoAPI
	table  string
	keys   *keyGenerator
}

// NewKeyedTreeStore builds a KeyedTreeStore from the runtime configuration.
func NewKeyedTreeStore(ctx context.Context, cfg *config.Config) (*KeyedTreeStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &KeyedTreeStore{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  cfg.DynamoTable,
		keys:   newKeyGenerator(),
	}, nil
}

func (s *KeyedTreeStore) Write(ctx context.Context, dbPath string, rec Record) (*WriteResult, error) {
	key, err := s.keys.next()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	parent := normalizePath(dbPath)
	now := time.Now().UTC().Truncate(time.Second)

	av, err := attributevalue.MarshalMap(treeItem{
		Path:      parent,
		Key:       key,
		Record:    rec,
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s/%s: %v", common.ErrRecordStoreUnavailable, parent, key, err)
	}

	return &WriteResult{
		Key:       key,
		Ref:       parent + "/" + key,
		CreatedAt: now,
	}, nil
}

func (s *KeyedTreeStore) Remove(ctx context.Context, dbPath string) error {
	parent, key := splitPath(dbPath)

	avKey, err := attributevalue.MarshalMap(map[string]string{
		"path": parent,
		"key":  key,
	})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 avKey,
		ConditionExpression: aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", common.ErrRecordNotFound, dbPath)
		}
		return fmt.Errorf("%w: delete %s: %v", common.ErrRecordStoreUnavailable, dbPath, err)
	}

	return nil
}
