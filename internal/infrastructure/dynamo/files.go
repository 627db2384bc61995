package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sheetboard-api/internal/domain"
)

// FileRepo provides typed DynamoDB operations for the files table.
type FileRepo struct {
	client    API
	tableName string
}

func NewFileRepo(client API, tableName string) *FileRepo {
	return &FileRepo{client: client, tableName: tableName}
}

// fileItem stores uploaded_at as epoch millis so the owner GSI sorts numerically.
type fileItem struct {
	FileID       string `dynamodbav:"file_id"`
	OwnerID      string `dynamodbav:"owner_id"`
	StoredName   string `dynamodbav:"stored_name"`
	OriginalName string `dynamodbav:"original_name"`
	Size         int64  `dynamodbav:"size"`
	UploadedAt   int64  `dynamodbav:"uploaded_at"`
}

func toFileItem(f *domain.UploadedFile) fileItem {
	return fileItem{
		FileID:       f.FileID,
		OwnerID:      f.OwnerID,
		StoredName:   f.StoredName,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		UploadedAt:   f.UploadedAt.UnixMilli(),
	}
}

func (it fileItem) toDomain() domain.UploadedFile {
	return domain.UploadedFile{
		FileID:       it.FileID,
		OwnerID:      it.OwnerID,
		StoredName:   it.StoredName,
		OriginalName: it.OriginalName,
		Size:         it.Size,
		UploadedAt:   unixMilliUTC(it.UploadedAt),
	}
}

func (r *FileRepo) Put(ctx context.Context, f *domain.UploadedFile) error {
	item, err := attributevalue.MarshalMap(toFileItem(f))
	if err != nil {
		return fmt.Errorf("marshal file: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FileRepo) Get(ctx context.Context, fileID string) (*domain.UploadedFile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldFileID, fileID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	var it fileItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	f := it.toDomain()
	return &f, nil
}

// ListByOwner returns the owner's files, newest first.
func (r *FileRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.UploadedFile, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexFilesOwnerAge),
		KeyConditionExpression:   aws.String("#o = :o"),
		ExpressionAttributeNames: map[string]string{"#o": fieldOwnerID},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o": &types.AttributeValueMemberS{Value: ownerID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	return collectFiles(func() (bool, []map[string]types.AttributeValue, error) {
		if !p.HasMorePages() {
			return false, nil, nil
		}
		out, err := p.NextPage(ctx)
		if err != nil {
			return false, nil, err
		}
		return true, out.Items, nil
	})
}

// ScanAll returns every file record in the table.
func (r *FileRepo) ScanAll(ctx context.Context) ([]domain.UploadedFile, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	return collectFiles(func() (bool, []map[string]types.AttributeValue, error) {
		if !p.HasMorePages() {
			return false, nil, nil
		}
		out, err := p.NextPage(ctx)
		if err != nil {
			return false, nil, err
		}
		return true, out.Items, nil
	})
}

func collectFiles(next func() (bool, []map[string]types.AttributeValue, error)) ([]domain.UploadedFile, error) {
	files := []domain.UploadedFile{}
	for {
		more, items, err := next()
		if err != nil {
			return nil, err
		}
		if !more {
			return files, nil
		}
		var page []fileItem
		if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
			return nil, err
		}
		for _, it := range page {
			files = append(files, it.toDomain())
		}
	}
}
