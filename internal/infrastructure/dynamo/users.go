package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sheetboard-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// emailLockPrefix keys the per-email uniqueness item stored next to the users.
// Lock items carry no email or role attribute, so they stay out of both GSIs.
const emailLockPrefix = "email#"

type emailLock struct {
	Key    string `dynamodbav:"user_id"`
	UserID string `dynamodbav:"lock_owner"`
}

// Put creates a user together with its email lock in one transaction. It
// refuses to overwrite an existing user_id or to reuse a taken email.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	lock, err := attributevalue.MarshalMap(emailLock{Key: emailLockPrefix + u.Email, UserID: u.UserID})
	if err != nil {
		return fmt.Errorf("marshal email lock: %w", err)
	}
	notExists := func(it map[string]types.AttributeValue) types.TransactWriteItem {
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     it,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": fieldUserID},
		}}
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{notExists(item), notExists(lock)},
	})
	if failed := failedConditions(err); len(failed) == 2 {
		if failed[0] {
			return fmt.Errorf("user id already exists: %w", domain.ErrConflict)
		}
		if failed[1] {
			return fmt.Errorf("email already exists: %w", domain.ErrConflict)
		}
	}
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	if strings.HasPrefix(userID, emailLockPrefix) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsersEmail, fieldEmail, email)
}

// FindByRole returns any one user holding role.
func (r *UserRepo) FindByRole(ctx context.Context, role string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsersRole, fieldRole, role)
}

// ScanAll returns every user in the table.
func (r *UserRepo) ScanAll(ctx context.Context) ([]domain.User, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("attribute_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	users := []domain.User{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.User
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		users = append(users, page...)
	}
	return users, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.update(ctx, userID, map[string]interface{}{fieldPasswordHash: passwordHash})
	return err
}

// SetRole changes a user's role and returns the updated record.
func (r *UserRepo) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	return r.update(ctx, userID, map[string]interface{}{fieldRole: role})
}

func (r *UserRepo) update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error) {
	if strings.HasPrefix(userID, emailLockPrefix) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return nil, err
	}
	ue.Names["#id"] = fieldUserID
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
