// Defines what the Store requires of the objects it persists.

package dirdb

// Storable is implemented by every kind of object a Store persists.
type Storable interface {
	// TableName is the table the kind persists to.
	TableName() string
	// DisplayName is the human-readable part of the row file name.
	DisplayName() string
	// Fields returns the object's persistable metadata. Data objects report
	// their bulk array under DataField.
	Fields() (Fields, error)
	// StoreBinding returns the object's binding, usually by embedding Binding.
	StoreBinding() *Binding
}

// Owner is implemented by objects that own data objects. The store saves them,
// in order, before the owner's own metadata is produced.
type Owner interface {
	DataObjects() []DataObject
}

// DataObject is a Storable that may carry a bulk numeric payload.
type DataObject interface {
	Storable
	// HasBulkData reports whether the kind keeps its array in a payload file.
	// When false, Store.LoadObjData never touches the file system.
	HasBulkData() bool
}

// Kind reconstructs objects of one table from their metadata.
type Kind interface {
	TableName() string
	FromFields(fields Fields) (Storable, error)
}

// Binding associates an object with the store that persisted or opened it and
// the id it has there.
//
// Embed Binding in a struct to satisfy the StoreBinding method of Storable. The
// zero value is unbound.
type Binding struct {
	id    int
	store *Store
}

// StoreBinding returns b. It lets an embedding struct satisfy Storable.
func (b *Binding) StoreBinding() *Binding {
	return b
}

// Bound reports whether the object was saved to or opened from a store.
func (b *Binding) Bound() bool {
	return b.store != nil
}

// ID returns the row id. Only meaningful when Bound.
func (b *Binding) ID() int {
	return b.id
}

// Store returns the store the object is bound to, or nil.
func (b *Binding) Store() *Store {
	return b.store
}

func (b *Binding) bind(s *Store, id int) {
	b.store = s
	b.id = id
}
