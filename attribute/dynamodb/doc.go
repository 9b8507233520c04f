// Package dynamodb resolves hit attributes from a DynamoDB table.
//
// The table is keyed by the vector id stored in the database (a number
// attribute, "vector_id" by default) and holds one attribute per item
// attribute name:
//
//	aws dynamodb create-table \
//	  --table-name content-ids \
//	  --attribute-definitions AttributeName=vector_id,AttributeType=N \
//	  --key-schema AttributeName=vector_id,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
//
// Strings, numbers and booleans map to the matching index.AttributeValue;
// NULL and absent attributes are reported as missing.
package dynamodb
