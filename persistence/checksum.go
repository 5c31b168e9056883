package persistence

import (
	"hash/crc32"
	"math"
)

// Checksum utilities for artifact integrity verification.
//
// CRC32 (IEEE) detects accidental corruption only; it is not tamper proof.

// CRC32Table is the IEEE polynomial table for checksum computation.
var CRC32Table = crc32.MakeTable(crc32.IEEE)

// CalculateChecksum calculates CRC32 checksum of data.
func CalculateChecksum(data []byte) uint32 {
	return crc32.Checksum(data, CRC32Table)
}

func math32bits(f float32) uint32     { return math.Float32bits(f) }
func math32frombits(b uint32) float32 { return math.Float32frombits(b) }
