// Package model holds the single example domain type the thin example
// controller (package controller) serves. It is not part of the
// Adapter Facade or Lock Manager: those operate on dynamic
// types.Attributes/types.Record, never on a compiled Go struct. Widget
// exists only so the controller has something concrete to bind
// requests into before handing the values to the facade as a
// types.Record.
package model

// Widget is an unremarkable example resource, standing in for
// whatever a real host application's collection would be.
type Widget struct {
	ID        int64  `json:"id,omitempty" schema:"-"`
	Name      string `json:"name" schema:"name"`
	CreatedAt string `json:"createdAt,omitempty" schema:"-"`
	UpdatedAt string `json:"updatedAt,omitempty" schema:"-"`
}
