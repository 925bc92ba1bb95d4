package expr

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AsSet converts slice values into DynamoDB set attribute values so they can
// be used with ADD and DELETE. Scalars, attribute values, and slices of other
// element kinds are returned unchanged.
func AsSet(value any) (any, error) {
	switch v := value.(type) {
	case types.AttributeValue, nil:
		return value, nil
	case []byte:
		return value, nil
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("set value cannot be empty")
		}
		return &types.AttributeValueMemberSS{Value: append([]string(nil), v...)}, nil
	case [][]byte:
		if len(v) == 0 {
			return nil, fmt.Errorf("set value cannot be empty")
		}
		return &types.AttributeValueMemberBS{Value: append([][]byte(nil), v...)}, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return value, nil
	}
	if rv.Len() == 0 {
		return nil, fmt.Errorf("set value cannot be empty")
	}

	switch rv.Type().Elem().Kind() {
	case reflect.String:
		set := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			set[i] = rv.Index(i).String()
		}
		return &types.AttributeValueMemberSS{Value: set}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		set := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			av, err := ToAttributeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			n, ok := av.(*types.AttributeValueMemberN)
			if !ok {
				return nil, fmt.Errorf("expected number type for number set")
			}
			set[i] = n.Value
		}
		return &types.AttributeValueMemberNS{Value: set}, nil
	}
	return value, nil
}
