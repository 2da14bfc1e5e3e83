// Package results unwraps driver responses and decodes their values into
// caller types. It is the one place that knows both the statement response
// shape and the driver-specific value types (record IDs, datetimes).
package results

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// StatementRows flattens a driver response into the records of its first
// statement. Each response entry is shaped {"status": ..., "result": ...};
// a scalar result becomes a single-element row list.
func StatementRows(results []any) []any {
	if len(results) == 0 {
		return nil
	}
	resp, ok := results[0].(map[string]any)
	if !ok {
		return results
	}
	result, ok := resp["result"]
	if !ok {
		return results
	}
	switch r := result.(type) {
	case nil:
		return nil
	case []any:
		return r
	default:
		return []any{r}
	}
}

// Decode converts a driver value into out, converting record IDs to strings
// and driver datetimes to time.Time along the way. Numeric widths are
// reconciled weakly, since the codec hands numbers back as uint64 or float64.
func Decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       driverValueHook,
	})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// driverValueHook converts SurrealDB driver types into plain Go values before
// struct assignment.
func driverValueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch v := data.(type) {
	case models.RecordID:
		if to.Kind() == reflect.String {
			return v.String(), nil
		}
	case *models.RecordID:
		if v != nil && to.Kind() == reflect.String {
			return v.String(), nil
		}
	case models.CustomDateTime:
		if to == reflect.TypeOf(time.Time{}) {
			return v.Time, nil
		}
	case *models.CustomDateTime:
		if v != nil && to == reflect.TypeOf(time.Time{}) {
			return v.Time, nil
		}
	}
	return data, nil
}
