package intern

import "hash/fnv"

// ByteStr is a canonical, immutable byte string handle.  Two byte strings
// interned through the same Interner compare equal if and only if their
// handles are pointer-identical, so names can be compared and used as map
// keys without touching the underlying bytes.
type ByteStr struct {
	bytes []byte
	hash  uint32
}

// Bytes returns the raw bytes of the byte string.  The returned slice must
// not be mutated.
func (bs *ByteStr) Bytes() []byte {
	return bs.bytes
}

// Hash returns the precomputed FNV-1a hash of the byte string.
func (bs *ByteStr) Hash() uint32 {
	return bs.hash
}

func (bs *ByteStr) String() string {
	return string(bs.bytes)
}

// Len returns the length of the byte string in bytes.
func (bs *ByteStr) Len() int {
	return len(bs.bytes)
}

// -----------------------------------------------------------------------------

// Interner maps byte strings to their canonical ByteStr handles.  The table
// is append-only: handles are never removed or reassigned.  Concurrent
// readers are safe only as long as no interleaved writer is running; embedders
// parsing multiple packages concurrently must serialize calls to Get.
type Interner struct {
	table map[string]*ByteStr
}

// NewInterner creates a new, empty interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*ByteStr)}
}

// Get returns the canonical handle for the given bytes, interning them on
// first use.  The input slice is copied: callers may reuse their buffer.
func (in *Interner) Get(b []byte) *ByteStr {
	if bs, ok := in.table[string(b)]; ok {
		return bs
	}

	owned := make([]byte, len(b))
	copy(owned, b)

	h := fnv.New32a()
	h.Write(owned)

	bs := &ByteStr{bytes: owned, hash: h.Sum32()}
	in.table[string(owned)] = bs
	return bs
}

// GetStr is a convenience form of Get for string inputs.
func (in *Interner) GetStr(s string) *ByteStr {
	return in.Get([]byte(s))
}

// Len returns the number of distinct byte strings interned so far.
func (in *Interner) Len() int {
	return len(in.table)
}
