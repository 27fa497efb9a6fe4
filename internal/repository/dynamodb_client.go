package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"year-progress-bot/internal/domain"
)

const skState = "STATE#"

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps the state document as a single DynamoDB item.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	botID     string
	now       func() time.Time
}

// NewDynamoStore creates a DynamoStore for the given table. botID keys the
// item so several bots may share one table.
func NewDynamoStore(api dynamodbAPI, tableName, botID string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if strings.TrimSpace(botID) == "" {
		return nil, errors.New("repository: bot id must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, botID: botID, now: time.Now}, nil
}

// botPK returns the DynamoDB partition key for a bot.
func botPK(botID string) string {
	return "BOT#" + botID
}

func (d *DynamoStore) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: botPK(d.botID)},
		"SK": &types.AttributeValueMemberS{Value: skState},
	}
}

// Load reads the state item. A missing item is an empty state.
func (d *DynamoStore) Load(ctx context.Context) (*domain.State, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: Load get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.NewState(), nil
	}
	st, err := itemToState(out.Item)
	if err != nil {
		return nil, fmt.Errorf("repository: Load decode: %w", err)
	}
	return st, nil
}

// Save replaces the state item in one PutItem call.
func (d *DynamoStore) Save(ctx context.Context, st *domain.State) error {
	if st == nil {
		return errors.New("repository: Save: state must not be nil")
	}
	item := stateItem(st)
	for k, v := range d.key() {
		item[k] = v
	}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: d.now().UTC().Format(time.RFC3339)}

	_, err := d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: Save: %w", err)
	}
	return nil
}

func stateItem(st *domain.State) map[string]types.AttributeValue {
	silence := make(map[string]types.AttributeValue, len(st.SilenceDays))
	for month, days := range st.SilenceDays {
		// DynamoDB rejects empty sets.
		if len(days) == 0 {
			continue
		}
		nums := make([]string, 0, len(days))
		for _, day := range days {
			nums = append(nums, strconv.Itoa(day))
		}
		silence[month] = &types.AttributeValueMemberNS{Value: nums}
	}

	history := make(map[string]types.AttributeValue, len(st.History))
	for category, used := range st.History {
		list := make([]types.AttributeValue, 0, len(used))
		for _, p := range used {
			list = append(list, &types.AttributeValueMemberS{Value: p})
		}
		history[category] = &types.AttributeValueMemberL{Value: list}
	}

	return map[string]types.AttributeValue{
		"lastSent":    &types.AttributeValueMemberS{Value: st.LastSent},
		"silenceDays": &types.AttributeValueMemberM{Value: silence},
		"history":     &types.AttributeValueMemberM{Value: history},
	}
}

// itemToState converts a DynamoDB attribute map to a State.
func itemToState(item map[string]types.AttributeValue) (*domain.State, error) {
	st := domain.NewState()

	lastSent, err := strAttr(item, "lastSent")
	if err != nil {
		return nil, err
	}
	st.LastSent = lastSent

	silence, err := mapAttr(item, "silenceDays")
	if err != nil {
		return nil, err
	}
	for month, v := range silence {
		ns, ok := v.(*types.AttributeValueMemberNS)
		if !ok {
			return nil, fmt.Errorf("repository: silence days for %q are not a number set", month)
		}
		days := make([]int, 0, len(ns.Value))
		for _, n := range ns.Value {
			day, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("repository: parse silence day %q: %w", n, err)
			}
			days = append(days, day)
		}
		// Number sets are unordered.
		sort.Ints(days)
		st.SilenceDays[month] = days
	}

	history, err := mapAttr(item, "history")
	if err != nil {
		return nil, err
	}
	for category, v := range history {
		l, ok := v.(*types.AttributeValueMemberL)
		if !ok {
			return nil, fmt.Errorf("repository: history for %q is not a list", category)
		}
		used := make([]string, 0, len(l.Value))
		for _, e := range l.Value {
			s, ok := e.(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("repository: history entry for %q is not a string", category)
			}
			used = append(used, s.Value)
		}
		st.History[category] = used
	}
	return st, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func mapAttr(item map[string]types.AttributeValue, key string) (map[string]types.AttributeValue, error) {
	v, ok := item[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a map", key)
	}
	return m.Value, nil
}
