package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var orderingParam = "ordering"

// Ordering binds `?ordering=name,-created_at` (a leading "-" means descending).
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindPage binds `?page=&limit=`; bad values fall back to the defaults.
func bindPage(ctx echo.Context) core.Page {
	var page core.Page
	_ = echo.QueryParamsBinder(ctx).
		Int("page", &page.Number).
		Int("limit", &page.Size).
		BindError()
	page.Clean()
	return page
}

// bindQuery binds query params into dest, ignoring the request body.
func bindQuery(ctx echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, dest); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	return nil
}

// bindBody binds the JSON body into dest.
func bindBody(ctx echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, dest); err != nil {
		return errors.Wrap(err, "binding body")
	}
	return nil
}
