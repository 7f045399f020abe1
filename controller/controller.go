// Package controller is a thin, unremarkable example consumer of the
// Adapter Facade: plain gin handlers for one collection's create,
// list, get, update, and delete, with gorilla/schema decoding list
// query parameters into model.Widget. It is not part of the facade or
// lock manager and carries none of their invariants: a host
// application is free to replace it wholesale.
package controller

import (
	"net/http"
	"strconv"

	"github.com/forbearing/gstore/facade"
	"github.com/forbearing/gstore/model"
	"github.com/forbearing/gstore/response"
	"github.com/forbearing/gstore/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
)

// Controller exposes a single collection through the facade.
type Controller struct {
	f          *facade.Facade
	collection string
}

// New returns a Controller over collection, which must already be
// defined (or synced) through f.
func New(f *facade.Facade, collection string) *Controller {
	return &Controller{f: f, collection: collection}
}

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// Create handles POST /widgets.
func (ctl *Controller) Create(c *gin.Context) {
	var w model.Widget
	if err := c.ShouldBindJSON(&w); err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	created, err := ctl.f.Create(c.Request.Context(), ctl.collection, types.Record{"name": w.Name})
	if err != nil {
		response.ResponseJSON(c, response.CodeFailure.WithErr(err))
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, created)
}

// List handles GET /widgets?name=...&limit=...&skip=....
func (ctl *Controller) List(c *gin.Context) {
	var q struct {
		Name  string `schema:"name"`
		Limit *int   `schema:"limit"`
		Skip  *int   `schema:"skip"`
	}
	if err := queryDecoder.Decode(&q, c.Request.URL.Query()); err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	criteria := map[string]any{}
	if q.Name != "" {
		criteria["where"] = map[string]any{"name": q.Name}
	}
	if q.Limit != nil {
		criteria["limit"] = *q.Limit
	}
	if q.Skip != nil {
		criteria["skip"] = *q.Skip
	}

	records, err := ctl.f.FindAll(c.Request.Context(), ctl.collection, criteria)
	if err != nil {
		response.ResponseJSON(c, response.CodeFailure.WithErr(err))
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, records)
}

// Get handles GET /widgets/:id.
func (ctl *Controller) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	record, err := ctl.f.Find(c.Request.Context(), ctl.collection, id)
	if err != nil {
		response.ResponseJSON(c, response.CodeFailure.WithErr(err))
		return
	}
	if record == nil {
		response.ResponseJSON(c, response.CodeNotFound)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, record)
}

// Update handles PATCH /widgets/:id.
func (ctl *Controller) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	var w model.Widget
	if err := c.ShouldBindJSON(&w); err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	updated, err := ctl.f.Update(c.Request.Context(), ctl.collection, id, types.Record{"name": w.Name})
	if err != nil {
		response.ResponseJSON(c, response.CodeFailure.WithErr(err))
		return
	}
	if len(updated) == 0 {
		response.ResponseJSON(c, response.CodeNotFound)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, updated[0])
}

// Delete handles DELETE /widgets/:id.
func (ctl *Controller) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ResponseJSON(c, response.CodeInvalidParam.WithErr(err))
		return
	}

	destroyed, err := ctl.f.Destroy(c.Request.Context(), ctl.collection, id)
	if err != nil {
		response.ResponseJSON(c, response.CodeFailure.WithErr(err))
		return
	}
	if len(destroyed) == 0 {
		response.ResponseJSON(c, response.CodeNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
