package tree

import (
	"fmt"
	"strings"
)

// Observer receives change notifications from a Tree. Structural changes
// arrive as Begin/End pairs around the mutation; value changes arrive after
// the write. Nothing is emitted for rejected mutations.
type Observer interface {
	BeginInsertRows(parent Handle, first, last int)
	EndInsertRows()
	BeginRemoveRows(parent Handle, first, last int)
	EndRemoveRows()
	BeginMoveRows(srcParent Handle, first, last int, dstParent Handle, dstRow int)
	EndMoveRows()
	BeginInsertColumns(first, last int)
	EndInsertColumns()
	BeginRemoveColumns(first, last int)
	EndRemoveColumns()
	DataChanged(topLeft, bottomRight Handle)
	HeaderDataChanged(first, last int)
	ModelReset()
}

// NopObserver implements Observer with no-ops. Embed it to handle only the
// notifications you care about.
type NopObserver struct{}

func (NopObserver) BeginInsertRows(Handle, int, int)            {}
func (NopObserver) EndInsertRows()                              {}
func (NopObserver) BeginRemoveRows(Handle, int, int)            {}
func (NopObserver) EndRemoveRows()                              {}
func (NopObserver) BeginMoveRows(Handle, int, int, Handle, int) {}
func (NopObserver) EndMoveRows()                                {}
func (NopObserver) BeginInsertColumns(int, int)                 {}
func (NopObserver) EndInsertColumns()                           {}
func (NopObserver) BeginRemoveColumns(int, int)                 {}
func (NopObserver) EndRemoveColumns()                           {}
func (NopObserver) DataChanged(Handle, Handle)                  {}
func (NopObserver) HeaderDataChanged(int, int)                  {}
func (NopObserver) ModelReset()                                 {}

// Recorder logs every notification as a short line. Handles are written as
// "row:col" with "-" for the root sentinel.
type Recorder struct {
	Events []string
}

func (r *Recorder) add(format string, args ...any) {
	r.Events = append(r.Events, fmt.Sprintf(format, args...))
}

func (r *Recorder) Reset() { r.Events = nil }

func (r *Recorder) String() string { return strings.Join(r.Events, "\n") }

func recHandle(h Handle) string {
	if !h.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", h.row, h.column)
}

func (r *Recorder) BeginInsertRows(p Handle, first, last int) {
	r.add("begin-insert-rows %s %d %d", recHandle(p), first, last)
}
func (r *Recorder) EndInsertRows() { r.add("end-insert-rows") }
func (r *Recorder) BeginRemoveRows(p Handle, first, last int) {
	r.add("begin-remove-rows %s %d %d", recHandle(p), first, last)
}
func (r *Recorder) EndRemoveRows() { r.add("end-remove-rows") }
func (r *Recorder) BeginMoveRows(sp Handle, first, last int, dp Handle, dst int) {
	r.add("begin-move-rows %s %d %d %s %d", recHandle(sp), first, last, recHandle(dp), dst)
}
func (r *Recorder) EndMoveRows() { r.add("end-move-rows") }
func (r *Recorder) BeginInsertColumns(first, last int) {
	r.add("begin-insert-columns %d %d", first, last)
}
func (r *Recorder) EndInsertColumns() { r.add("end-insert-columns") }
func (r *Recorder) BeginRemoveColumns(first, last int) {
	r.add("begin-remove-columns %d %d", first, last)
}
func (r *Recorder) EndRemoveColumns() { r.add("end-remove-columns") }
func (r *Recorder) DataChanged(tl, br Handle) {
	r.add("data-changed %s %s", recHandle(tl), recHandle(br))
}
func (r *Recorder) HeaderDataChanged(first, last int) {
	r.add("header-changed %d %d", first, last)
}
func (r *Recorder) ModelReset() { r.add("model-reset") }
