package syntax

import "cobalt/report"

// Scanner is the token cursor contract the parser consumes.  A scanner is
// positioned on one token at a time; Next advances it.  The numeric value
// accessors are only meaningful while the scanner is positioned on the
// corresponding literal kind.
type Scanner interface {
	// Tok returns the kind of the current token.
	Tok() int

	// Pos returns the position of the first byte of the current token.
	Pos() report.Pos

	// Int32Val returns the 32-bit value of an integer literal that fits in
	// 32 bits; the second result is false if it does not fit.
	Int32Val() (int32, bool)

	// Int64Val returns the raw 64-bit value bits of an integer literal and
	// whether the value is signed (fits in a signed 64-bit integer).
	Int64Val() (uint64, bool)

	// FloatVal returns the value of a float literal.
	FloatVal() float64

	// TakeByteValue returns the bytes of a name, string (unescaped), or
	// comment token and clears the scanner's buffer.  The caller takes
	// ownership.
	TakeByteValue() []byte

	// Hash returns the fast hash of the current NAME token's bytes.
	Hash() uint32

	// Next advances the scanner to the next token.
	Next()
}

// Checkpointer is implemented by scanners that can snapshot their state for
// the parser's backtracking harness.
type Checkpointer interface {
	// Checkpoint captures the scanner's current state.  The returned
	// checkpoint must be released on completion, whether or not it was
	// restored.
	Checkpoint() Checkpoint
}

// Checkpoint is a short-lived capture of scanner state: token position,
// look-ahead, line tracking, and literal buffers.
type Checkpoint interface {
	// Restore rewinds the scanner to the captured state.
	Restore()

	// Release frees the checkpoint's buffers.  After Release the checkpoint
	// must not be used.
	Release()
}
