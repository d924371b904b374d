package gguf

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic           = errors.New("bad GGUF magic")
	ErrUnsupportedVersion = errors.New("unsupported GGUF version")
	ErrOutOfBounds        = errors.New("read out of bounds")
	ErrInvalidEncoding    = errors.New("invalid UTF-8 string")
	ErrUnknownValueKind   = errors.New("unknown value kind")
	ErrNestingTooDeep     = errors.New("array nesting too deep")
)

// Stage identifies which part of the container was being decoded when a parse failed.
type Stage int

const (
	StageMagic Stage = iota
	StageVersion
	StageCounts
	StageMetadata
	StageTensors
)

func (s Stage) String() string {
	switch s {
	case StageMagic:
		return "magic"
	case StageVersion:
		return "version"
	case StageCounts:
		return "counts"
	case StageMetadata:
		return "metadata"
	case StageTensors:
		return "tensors"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseError reports the stage, entry index and byte offset of a failed parse.
// Index is -1 for stages that are not tables. Key is the metadata key or tensor
// name when it was decoded before the failure.
type ParseError struct {
	Stage  Stage
	Index  int64
	Key    string
	Offset uint64
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("gguf: %s at offset %d: %v", e.Stage, e.Offset, e.Err)
	case e.Key != "":
		return fmt.Sprintf("gguf: %s entry %d (%q) at offset %d: %v", e.Stage, e.Index, e.Key, e.Offset, e.Err)
	default:
		return fmt.Sprintf("gguf: %s entry %d at offset %d: %v", e.Stage, e.Index, e.Offset, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorKind returns the name of the sentinel err wraps, or "" when it wraps none.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrBadMagic):
		return "bad_magic"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrUnknownValueKind):
		return "unknown_value_kind"
	case errors.Is(err, ErrNestingTooDeep):
		return "nesting_too_deep"
	default:
		return ""
	}
}
