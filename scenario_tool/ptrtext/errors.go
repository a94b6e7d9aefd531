package ptrtext

import "errors"

var (
	// ErrMissingInput is returned when a required input file does not exist.
	ErrMissingInput = errors.New("input file not found")

	// ErrNoBlocks is returned when an export file contains no STRING block.
	ErrNoBlocks = errors.New("no string blocks found in export file")

	// ErrUnknownEncoding is returned for an encoding name with no codec.
	ErrUnknownEncoding = errors.New("unknown text encoding")

	// ErrBadTable is returned when a character table cannot be parsed.
	ErrBadTable = errors.New("bad character table")

	// ErrDecode is returned by a Codec for bytes it cannot map.
	ErrDecode = errors.New("decode failed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")
)
