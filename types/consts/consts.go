// Package consts collects the small enums and sentinel strings shared
// across the facade, lock manager, and adapters.
package consts

// AttrType is the semantic type of an Attribute. Adapters map it onto
// whatever native column type they support.
type AttrType string

const (
	AttrString AttrType = "string"
	AttrInt    AttrType = "int"
	AttrFloat  AttrType = "float"
	AttrBool   AttrType = "bool"
	AttrTime   AttrType = "time"
	AttrJSON   AttrType = "json"
)

// SyncStrategy selects how a collection's schema is reconciled at
// startup. See facade.Sync*.
type SyncStrategy string

const (
	SyncDrop  SyncStrategy = "drop"
	SyncAlter SyncStrategy = "alter"
	SyncSafe  SyncStrategy = "safe"
)

// Reserved attribute names injected by the Attribute Augmenter.
const (
	AttrID        = "id"
	AttrCreatedAt = "createdAt"
	AttrUpdatedAt = "updatedAt"
)

// TransactionCollection is the default name of the reserved collection
// the Lock Manager stores its lock entries in. Overridable via
// config.Facade.TransactionCollection.
const TransactionCollection = "gstore_transaction"
