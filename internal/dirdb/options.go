// Store construction parameters.

package dirdb

import (
	"fmt"
	"strings"
)

// Default construction parameters.
const (
	DefaultRoot    = "./ixdat_data"
	DefaultMetaExt = ".ix"
	DefaultDataExt = ".npy"
)

// FirstID is the id given to the first row of an empty table.
const FirstID = 0

// Committer records written row files, e.g. in a version control history.
//
// Paths are relative to the store root.
type Committer interface {
	Commit(msg string, files []string) error
}

// Options configures a Store.
type Options struct {
	// Root is the directory holding one sub-directory per table. Created if missing.
	Root string `json:"root" yaml:"root"`
	// MetaExt is the extension of metadata documents.
	MetaExt string `json:"meta_ext" yaml:"meta_ext"`
	// DataExt is the extension of payload files.
	DataExt string `json:"data_ext" yaml:"data_ext"`
	// Format selects the metadata document encoding.
	Format Format `json:"format" yaml:"format"`

	// Committer, when set, is told about every row written.
	Committer Committer `json:"-" yaml:"-"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Root:    DefaultRoot,
		MetaExt: DefaultMetaExt,
		DataExt: DefaultDataExt,
		Format:  FormatJSON,
	}
}

// withDefaults fills unset fields and normalizes extensions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Root == "" {
		o.Root = d.Root
	}
	if o.MetaExt == "" {
		o.MetaExt = d.MetaExt
	}
	if o.DataExt == "" {
		o.DataExt = d.DataExt
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	o.MetaExt = normalizeExt(o.MetaExt)
	o.DataExt = normalizeExt(o.DataExt)
	return o
}

// Validate checks that the options can describe a store layout.
//
// Unset fields are valid: they take their default.
func (o *Options) Validate() error {
	n := o.withDefaults()
	if strings.HasSuffix(n.MetaExt, n.DataExt) || strings.HasSuffix(n.DataExt, n.MetaExt) {
		return fmt.Errorf("%w: metadata extension %q and payload extension %q overlap", ErrInvalidOptions, n.MetaExt, n.DataExt)
	}
	for _, ext := range []string{n.MetaExt, n.DataExt} {
		if ext == "." || strings.ContainsAny(ext, `/\_`) {
			return fmt.Errorf("%w: bad extension %q", ErrInvalidOptions, ext)
		}
	}
	if err := n.Format.Validate(); err != nil {
		return err
	}
	return nil
}
