// Package endian provides the byte-order engine used to encode and decode
// every fixed-width field in the segment format.
//
// The Segment V2 wire format (spec §6.1) mandates little-endian for every
// integer, so this package does not expose a selectable big-endian engine;
// GetLittleEndianEngine is the sole entry point and every writer/reader in
// this module uses it exclusively.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface, letting callers both Put into a pre-sized slice
// and Append to a growing buffer through one value.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the engine used throughout the segment and
// page layers.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
