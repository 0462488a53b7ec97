package echoapi

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
)

var orderingParam = "ordering"

// bindRaw decodes the JSON body as a raw object, so it can go through the
// same normalization as the client's payloads.
func bindRaw(ctx echo.Context) (record.Raw, error) {
	raw := make(record.Raw)
	dec := json.NewDecoder(ctx.Request().Body)
	if err := dec.Decode(&raw); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid JSON body"))
	}
	return raw, nil
}

// bindOrdering reads the "ordering" query param, e.g. "?ordering=class,-rollNumber".
func bindOrdering(ctx echo.Context) []core.Ordering {
	return core.ParseOrdering(ctx.QueryParam(orderingParam))
}
