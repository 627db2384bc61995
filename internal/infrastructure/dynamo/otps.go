package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sheetboard-api/internal/domain"
)

// OTPRepo holds at most one reset challenge per email (PK: email).
// PutItem replaces any previous record, so only the latest code survives.
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

type otpItem struct {
	Email     string `dynamodbav:"email"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"` // unix ms
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.OtpRecord) error {
	item, err := attributevalue.MarshalMap(otpItem{Email: o.Email, Code: o.Code, ExpiresAt: o.ExpiresAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, email string) (*domain.OtpRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var it otpItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return &domain.OtpRecord{Email: it.Email, Code: it.Code, ExpiresAt: unixMilliUTC(it.ExpiresAt)}, nil
}

// Consume deletes the record in one conditional write, so a code can be
// redeemed once even under concurrent completions.
func (r *OTPRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldEmail, email),
		ConditionExpression:      aws.String("#c = :c AND #x >= :now"),
		ExpressionAttributeNames: map[string]string{"#c": fieldCode, "#x": fieldExpiresAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp not redeemable: %w", domain.ErrInvalidOrExpired)
	}
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}
