package dataset

import "sync/atomic"

// Holder publishes the active Dataset to concurrent readers. Swapping in a
// new snapshot is atomic; readers never observe a partially built one.
type Holder struct {
	current atomic.Pointer[Dataset]
}

// NewHolder returns a Holder containing d, which may be nil.
func NewHolder(d *Dataset) *Holder {
	h := &Holder{}
	if d != nil {
		h.current.Store(d)
	}
	return h
}

// Get returns the active dataset, or nil if none has been loaded.
func (h *Holder) Get() *Dataset {
	return h.current.Load()
}

// Swap installs d and returns the previous dataset.
func (h *Holder) Swap(d *Dataset) *Dataset {
	return h.current.Swap(d)
}
