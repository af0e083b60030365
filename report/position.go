package report

import (
	"fmt"
	"sort"
)

// Pos is a compact source position: an offset into a FileSet.  The zero
// value NoPos means "no position"; valid positions are strictly positive.
type Pos int

// NoPos is the absence of a position.
const NoPos Pos = 0

// IsValid reports whether the position is a real location in some file.
func (p Pos) IsValid() bool {
	return p > NoPos
}

// TextPosition is a fully resolved source position used for display and for
// handler callbacks.  Line and Col are one-indexed; a zero Line means the
// position could not be resolved.
type TextPosition struct {
	Filename string
	Offset   int
	Line     int
	Col      int
}

func (tp TextPosition) String() string {
	if tp.Line == 0 {
		if tp.Filename == "" {
			return "<unknown position>"
		}
		return tp.Filename
	}

	return fmt.Sprintf("%s:%d:%d", tp.Filename, tp.Line, tp.Col)
}

// -----------------------------------------------------------------------------

// File is a single source file registered in a FileSet.  It records the
// offsets of line starts so that flat offsets can be resolved to line and
// column numbers.
type File struct {
	name string

	// base is the FileSet-wide offset of the first byte of this file.
	base int

	// size is the length of the file in bytes.
	size int

	// lines holds the file-local offset of the first byte of each line.  The
	// first entry is always 0.
	lines []int
}

// Name returns the file's registered name.
func (f *File) Name() string {
	return f.name
}

// Size returns the file's size in bytes.
func (f *File) Size() int {
	return f.size
}

// AddLine records the file-local byte offset of the start of a new line.
// Offsets must be added in increasing order.
func (f *File) AddLine(offset int) {
	if n := len(f.lines); offset <= f.size && (n == 0 || f.lines[n-1] < offset) {
		f.lines = append(f.lines, offset)
	}
}

// Pos converts a file-local byte offset into a FileSet position.
func (f *File) Pos(offset int) Pos {
	if offset < 0 || offset > f.size {
		return NoPos
	}
	return Pos(f.base + offset)
}

// Offset converts a FileSet position belonging to this file back into a
// file-local byte offset.
func (f *File) Offset(p Pos) int {
	return int(p) - f.base
}

// Position resolves a FileSet position belonging to this file.
func (f *File) Position(p Pos) TextPosition {
	offset := f.Offset(p)

	// find the line containing offset
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if i < 0 {
		return TextPosition{Filename: f.name, Offset: offset}
	}

	return TextPosition{
		Filename: f.name,
		Offset:   offset,
		Line:     i + 1,
		Col:      offset - f.lines[i] + 1,
	}
}

// -----------------------------------------------------------------------------

// FileSet maps flat positions to files, lines, and columns.  Files are
// append-only; a FileSet shared between concurrently parsed packages must be
// externally serialized for AddFile.
type FileSet struct {
	base  int
	files []*File
}

// NewFileSet creates a new, empty file set.
func NewFileSet() *FileSet {
	// base starts at 1 so that Pos 0 remains NoPos
	return &FileSet{base: 1}
}

// AddFile registers a file of the given name and size with the set.
func (fset *FileSet) AddFile(name string, size int) *File {
	f := &File{
		name:  name,
		base:  fset.base,
		size:  size,
		lines: []int{0},
	}

	fset.base += size + 1
	fset.files = append(fset.files, f)
	return f
}

// FileFor returns the file containing the given position, or nil.
func (fset *FileSet) FileFor(p Pos) *File {
	if !p.IsValid() {
		return nil
	}

	i := sort.Search(len(fset.files), func(i int) bool {
		return fset.files[i].base > int(p)
	}) - 1

	if i < 0 {
		return nil
	}

	f := fset.files[i]
	if int(p) > f.base+f.size {
		return nil
	}

	return f
}

// Position resolves a position to a file, line, and column.  Invalid
// positions resolve to the zero TextPosition.
func (fset *FileSet) Position(p Pos) TextPosition {
	if f := fset.FileFor(p); f != nil {
		return f.Position(p)
	}

	return TextPosition{}
}
