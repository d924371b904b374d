// Package gguf decodes the header, metadata table and tensor descriptor
// table of a GGUF container held in memory.
//
// Every count and length field is 4 bytes wide in version 1 files and 8
// bytes wide in versions 2 and 3; ReadLength is the only place that width
// is chosen. Decoding never reads past the end of the buffer: truncated or
// corrupt input fails with ErrOutOfBounds, and a failed parse returns no
// partial container.
//
// The package never opens files and never touches tensor payloads.
package gguf
