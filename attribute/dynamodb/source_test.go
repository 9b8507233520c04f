package dynamodb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchsimilar"
	"github.com/hupe1980/searchsimilar/index"
)

type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // vector id -> item
	err   error
	calls []*dynamodb.GetItemInput
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}

	key, ok := params.Key[DefaultKeyAttribute].(*types.AttributeValueMemberN)
	if !ok {
		return nil, errors.New("ValidationException: missing key")
	}
	item, ok := m.items[key.Value]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}

	// Apply the projection.
	projected := make(map[string]types.AttributeValue)
	for _, name := range params.ExpressionAttributeNames {
		if v, ok := item[name]; ok {
			projected[name] = v
		}
	}
	return &dynamodb.GetItemOutput{Item: projected}, nil
}

func TestSource_GetAttribute(t *testing.T) {
	client := newMockDDBClient()
	client.items["7"] = map[string]types.AttributeValue{
		DefaultKeyAttribute: &types.AttributeValueMemberN{Value: "7"},
		"content_id":        &types.AttributeValueMemberS{Value: "doc-7"},
		"rank":              &types.AttributeValueMemberN{Value: "-3"},
		"big":               &types.AttributeValueMemberN{Value: "18446744073709551615"},
		"score":             &types.AttributeValueMemberN{Value: "0.25"},
		"live":              &types.AttributeValueMemberBOOL{Value: true},
		"gone":              &types.AttributeValueMemberNULL{Value: true},
	}

	src := NewSource(client, "content-ids", func(o *Options) { o.ConsistentRead = true })
	ctx := context.Background()
	hit := index.Hit{VectorID: 7}

	tests := []struct {
		name string
		want index.AttributeValue
	}{
		{"content_id", index.StringValue("doc-7")},
		{"rank", index.Int64Value(-3)},
		{"big", index.Uint64Value(18446744073709551615)},
		{"score", index.Float64Value(0.25)},
		{"live", index.BoolValue(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := src.GetAttribute(ctx, hit, tt.name)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	for _, name := range []string{"gone", "missing"} {
		v, ok, err := src.GetAttribute(ctx, hit, name)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	}

	in := client.calls[0]
	assert.Equal(t, "content-ids", *in.TableName)
	assert.True(t, *in.ConsistentRead)
	assert.Equal(t, "#a", *in.ProjectionExpression)
}

func TestSource_MissingItem(t *testing.T) {
	src := NewSource(newMockDDBClient(), "content-ids")

	_, ok, err := src.GetAttribute(context.Background(), index.Hit{VectorID: 1}, "content_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSource_UnsupportedType(t *testing.T) {
	client := newMockDDBClient()
	client.items["1"] = map[string]types.AttributeValue{
		"content_id": &types.AttributeValueMemberSS{Value: []string{"a", "b"}},
	}

	_, _, err := NewSource(client, "t").GetAttribute(context.Background(), index.Hit{VectorID: 1}, "content_id")
	require.Error(t, err)
	assert.ErrorIs(t, err, searchsimilar.ErrAttributeTypeMismatch)
	assert.Equal(t, searchsimilar.KindAttributeTypeMismatch, searchsimilar.KindOf(err))
}

func TestSource_ClientError(t *testing.T) {
	client := newMockDDBClient()
	client.err = &types.ProvisionedThroughputExceededException{}

	_, _, err := NewSource(client, "t").GetAttribute(context.Background(), index.Hit{VectorID: 1}, "content_id")
	var throttled *types.ProvisionedThroughputExceededException
	assert.ErrorAs(t, err, &throttled)
}

func TestSource_InvalidNumber(t *testing.T) {
	_, err := parseNumber("twelve")
	assert.Error(t, err)
}

func TestSource_WithHandler(t *testing.T) {
	client := newMockDDBClient()
	client.items["0"] = map[string]types.AttributeValue{"content_id": &types.AttributeValueMemberS{Value: "a"}}
	client.items["1"] = map[string]types.AttributeValue{"content_id": &types.AttributeValueMemberN{Value: "5"}}

	idx := &staticIndex{hits: []index.Hit{{VectorID: 0}, {VectorID: 1, SquaredDistance: 1}}}
	opener := searchsimilar.IndexOpenerFunc(func(context.Context, string, string, string) (searchsimilar.Index, error) {
		return idx, nil
	})
	cfg := searchsimilar.Config{BucketName: "b", HeaderKey: "db/header.bin"}

	_, err := searchsimilar.New(cfg, opener, searchsimilar.WithAttributeSource(NewSource(client, "t"))).
		Handle(context.Background(), nil)
	assert.ErrorIs(t, err, searchsimilar.ErrAttributeTypeMismatch)

	client.items["1"] = map[string]types.AttributeValue{"content_id": &types.AttributeValueMemberS{Value: "b"}}
	results, err := searchsimilar.New(cfg, opener, searchsimilar.WithAttributeSource(NewSource(client, "t"))).
		Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []searchsimilar.Result{{ID: "a", Distance: 0}, {ID: "b", Distance: 1}}, results)
}

type staticIndex struct {
	hits []index.Hit
}

func (s *staticIndex) Query(context.Context, []float32, int, int) ([]index.Hit, error) {
	return s.hits, nil
}

func (s *staticIndex) GetAttribute(context.Context, index.Hit, string) (index.AttributeValue, bool, error) {
	return nil, false, errors.New("not used")
}

func (s *staticIndex) Close() error { return nil }
