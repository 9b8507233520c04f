package dynamodb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/searchsimilar"
	"github.com/hupe1980/searchsimilar/index"
)

// DefaultKeyAttribute is the partition key holding the vector id.
const DefaultKeyAttribute = "vector_id"

// Client is the subset of the DynamoDB API used by Source.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Options configures a Source.
type Options struct {
	// KeyAttribute is the partition key name. Defaults to DefaultKeyAttribute.
	KeyAttribute string
	// ConsistentRead requests strongly consistent reads.
	ConsistentRead bool
}

// Source implements searchsimilar.AttributeSource on a DynamoDB table.
type Source struct {
	client Client
	table  string
	opts   Options
}

var _ searchsimilar.AttributeSource = (*Source)(nil)

// NewSource creates a Source reading from table.
func NewSource(client Client, table string, optFns ...func(*Options)) *Source {
	opts := Options{
		KeyAttribute: DefaultKeyAttribute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Source{client: client, table: table, opts: opts}
}

// GetAttribute fetches attribute name of the item keyed by hit.VectorID.
func (s *Source) GetAttribute(ctx context.Context, hit index.Hit, name string) (index.AttributeValue, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			s.opts.KeyAttribute: &types.AttributeValueMemberN{Value: strconv.FormatUint(hit.VectorID, 10)},
		},
		ProjectionExpression:     aws.String("#a"),
		ExpressionAttributeNames: map[string]string{"#a": name},
		ConsistentRead:           aws.Bool(s.opts.ConsistentRead),
	})
	if err != nil {
		return nil, false, fmt.Errorf("dynamodb %s: get item %d: %w", s.table, hit.VectorID, err)
	}

	av, ok := out.Item[name]
	if !ok {
		return nil, false, nil
	}

	v, err := convert(av)
	if err != nil {
		return nil, false, fmt.Errorf("dynamodb %s: %s of item %d: %w", s.table, name, hit.VectorID, err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// convert maps a DynamoDB attribute to an index.AttributeValue. NULL maps to nil.
func convert(av types.AttributeValue) (index.AttributeValue, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return index.StringValue(v.Value), nil
	case *types.AttributeValueMemberN:
		return parseNumber(v.Value)
	case *types.AttributeValueMemberBOOL:
		return index.BoolValue(v.Value), nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberB:
		return nil, unsupported("binary")
	case *types.AttributeValueMemberSS:
		return nil, unsupported("string set")
	case *types.AttributeValueMemberNS:
		return nil, unsupported("number set")
	case *types.AttributeValueMemberBS:
		return nil, unsupported("binary set")
	case *types.AttributeValueMemberL:
		return nil, unsupported("list")
	case *types.AttributeValueMemberM:
		return nil, unsupported("map")
	default:
		return nil, unsupported(fmt.Sprintf("%T", av))
	}
}

func unsupported(kind string) error {
	return fmt.Errorf("%w: %s cannot be used as an attribute", searchsimilar.ErrAttributeTypeMismatch, kind)
}

// parseNumber keeps integers exact and falls back to float64.
func parseNumber(s string) (index.AttributeValue, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return index.Int64Value(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return index.Uint64Value(u), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return index.Float64Value(f), nil
}
