package payload

import "fmt"

// InvalidBlockID is returned when a block's declared index does not match
// the sequential index expected at that position in the stream.
type InvalidBlockID struct {
	Expected uint32
	Actual   uint32
}

func (e InvalidBlockID) Error() string {
	return fmt.Sprintf("payload: invalid block id: expected %d, got %d", e.Expected, e.Actual)
}

// InvalidBlockHash is returned when a block's data does not hash to its
// declared SHA-256 hash.
type InvalidBlockHash struct {
	Index uint32
}

func (e InvalidBlockHash) Error() string {
	return fmt.Sprintf("payload: invalid hash for block %d", e.Index)
}

// InvalidFinalBlockHash is returned when the terminator block (size 0) does
// not carry an all-zero hash.
type InvalidFinalBlockHash struct{}

func (e InvalidFinalBlockHash) Error() string {
	return "payload: final block has non-zero hash"
}
