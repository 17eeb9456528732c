package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/listview"
	"catalogconsole/internal/log"
	"catalogconsole/internal/session"
	"catalogconsole/internal/validate"
)

// listState folds the request's search, filter and paging query into the
// session's state for page. A malformed search term is reported, not applied.
func listState(c *fiber.Ctx, sess *session.Session, page string, filterNames []string) (listview.UIState, string) {
	st := sess.ListState(page)
	query := c.Queries()

	msg := ""
	if raw, ok := query["q"]; ok {
		if _, valid := validate.Q(raw); !valid {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			msg = "Enter a valid search term"
			c.Status(fiber.StatusBadRequest)
		}
	}
	for _, name := range filterNames {
		if raw, ok := query[name]; ok {
			if _, valid := validate.FilterValue(raw); !valid {
				log.Security(c, "validation.fail", map[string]any{"field": name})
				msg = "Invalid filter"
				c.Status(fiber.StatusBadRequest)
			}
		}
	}

	st.Apply(listview.ParseParams(query, filterNames))
	return st, msg
}
