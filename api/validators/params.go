package validators

import (
	"strconv"
	"strings"

	pkgerrors "github.com/wardshop/ward-backend/pkg/errors"
)

// ParsePathInt64 parses a positive numeric path segment such as a product id.
func ParsePathInt64(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive number").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
