// Package response is the thin example controller's JSON envelope: a
// handful of codes a CRUD-over-Facade demo actually returns, wrapped in
// a Code/Responder/ResponseJSON shape.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Code int32

const (
	CodeSuccess Code = 0
	CodeFailure Code = -1
)

const (
	CodeInvalidParam Code = 1000 + iota
	CodeNotFound
	CodeAlreadyExist
	CodeInternal
)

type codeValue struct {
	Status int
	Msg    string
}

var codeValueMap = map[Code]codeValue{
	CodeSuccess:      {http.StatusOK, "success"},
	CodeFailure:      {http.StatusBadRequest, "failure"},
	CodeInvalidParam: {http.StatusBadRequest, "invalid parameters in the request"},
	CodeNotFound:     {http.StatusNotFound, "requested resource not found"},
	CodeAlreadyExist: {http.StatusConflict, "resource already exists"},
	CodeInternal:     {http.StatusInternalServerError, "internal error"},
}

// Responder abstracts a bare Code and a Code carrying a one-off
// override (see WithErr/WithMsg), so ResponseJSON can accept either.
type Responder interface {
	Msg() string
	Status() int
	Code() int
}

var _ Responder = Code(0)

func (c Code) Msg() string {
	if v, ok := codeValueMap[c]; ok {
		return v.Msg
	}
	return codeValueMap[CodeFailure].Msg
}

func (c Code) Status() int {
	if v, ok := codeValueMap[c]; ok {
		return v.Status
	}
	return http.StatusBadRequest
}

func (c Code) Code() int { return int(c) }

// WithErr overrides the message with err's text, keeping the code's
// default status.
func (c Code) WithErr(err error) Responder {
	return withMsg{Code: c, msg: err.Error()}
}

// WithMsg overrides the message, keeping the code's default status.
func (c Code) WithMsg(msg string) Responder {
	return withMsg{Code: c, msg: msg}
}

type withMsg struct {
	Code
	msg string
}

func (w withMsg) Msg() string { return w.msg }

// ResponseJSON writes the standard {code, msg, data} envelope.
func ResponseJSON(c *gin.Context, responder Responder, data ...any) {
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	c.JSON(responder.Status(), gin.H{
		"code": responder.Code(),
		"msg":  responder.Msg(),
		"data": payload,
	})
}
