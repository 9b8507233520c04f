package index

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/searchsimilar/internal/conv"
)

const (
	headerMagic   = 0x56534442 // "VSDB"
	headerVersion = 1
	headerPrefix  = 16
)

// PartitionInfo describes one partition of the database.
type PartitionInfo struct {
	// Centroid is the partition's representative vector (length Dim).
	Centroid []float32
	// Count is the number of vectors stored in the partition.
	Count uint32
	// VectorsBlob is the blob holding ids and vectors, relative to the store.
	VectorsBlob string
	// AttributesBlob is the blob holding the attribute table, relative to the store.
	AttributesBlob string
}

// Header is the entry point of a database.
//
// Format:
// Magic (4 bytes)
// Version (4 bytes)
// Checksum (4 bytes) - CRC32 of payload
// PayloadLength (4 bytes)
// Payload:
//
//	Dim (4 bytes)
//	Compression (1 byte)
//	NumAttributes (2 bytes)
//	AttributeNames... (u16 length + bytes)
//	NumPartitions (4 bytes)
//	Partitions...
//	  Centroid (Dim * 4 bytes)
//	  Count (4 bytes)
//	  VectorsBlob (u16 length + bytes)
//	  AttributesBlob (u16 length + bytes)
type Header struct {
	Dim            int
	Compression    Compression
	AttributeNames []string
	Partitions     []PartitionInfo
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}

	pb := newPayloadBuffer(make([]byte, 0, 64+len(h.Partitions)*(4*h.Dim+64)))

	pb.writeLen32(h.Dim)
	pb.writeUint8(uint8(h.Compression))
	pb.writeLen16(len(h.AttributeNames))
	for _, name := range h.AttributeNames {
		pb.writeName(name)
	}
	pb.writeLen32(len(h.Partitions))
	for _, p := range h.Partitions {
		pb.writeFloat32s(p.Centroid)
		pb.writeUint32(p.Count)
		pb.writeName(p.VectorsBlob)
		pb.writeName(p.AttributesBlob)
	}

	if pb.err != nil {
		return nil, pb.err
	}

	payload := pb.buf
	length, err := conv.IntToUint32(len(payload))
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerPrefix, headerPrefix+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], headerMagic)
	binary.LittleEndian.PutUint32(out[4:8], headerVersion)
	binary.LittleEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(out[12:16], length)
	return append(out, payload...), nil
}

// UnmarshalHeader decodes and validates a header. Every structural problem
// is reported as ErrCorrupt.
func UnmarshalHeader(data []byte) (*Header, error) {
	if len(data) < headerPrefix {
		return nil, corruptf("header too small: %d bytes", len(data))
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != headerMagic {
		return nil, corruptf("invalid magic: %x", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != headerVersion {
		return nil, corruptf("unsupported version: %d", version)
	}
	checksum := binary.LittleEndian.Uint32(data[8:12])
	length := binary.LittleEndian.Uint32(data[12:16])

	payload := data[headerPrefix:]
	if uint64(len(payload)) != uint64(length) {
		return nil, corruptf("payload length %d, header says %d", len(payload), length)
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, corruptf("checksum mismatch")
	}

	pb := newPayloadBuffer(payload)
	h := &Header{}

	h.Dim = int(pb.readUint32())
	h.Compression = Compression(pb.readUint8())

	numAttrs := int(pb.readUint16())
	if numAttrs*2 > pb.remaining() {
		return nil, corruptf("attribute count %d exceeds payload", numAttrs)
	}
	h.AttributeNames = make([]string, numAttrs)
	for i := range h.AttributeNames {
		h.AttributeNames[i] = pb.readName()
	}

	numPartitions := int(pb.readUint32())
	minPartition := 4*uint64(h.Dim) + 8
	if pb.err == nil && numPartitions > 0 && minPartition > uint64(pb.remaining())/uint64(numPartitions) {
		return nil, corruptf("partition count %d exceeds payload", numPartitions)
	}
	h.Partitions = make([]PartitionInfo, numPartitions)
	for i := range h.Partitions {
		p := &h.Partitions[i]
		p.Centroid = make([]float32, h.Dim)
		pb.readFloat32s(p.Centroid)
		p.Count = pb.readUint32()
		p.VectorsBlob = pb.readName()
		p.AttributesBlob = pb.readName()
		if pb.err != nil {
			break
		}
	}

	if pb.err != nil {
		return nil, corruptf("header payload: %v", pb.err)
	}
	if pb.remaining() != 0 {
		return nil, corruptf("%d trailing bytes in header payload", pb.remaining())
	}
	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return h, nil
}

func (h *Header) validate() error {
	if h.Dim <= 0 {
		return fmt.Errorf("invalid dimension %d", h.Dim)
	}
	if !h.Compression.valid() {
		return fmt.Errorf("unknown compression %s", h.Compression)
	}
	if len(h.AttributeNames) > 0xFFFF {
		return fmt.Errorf("too many attributes: %d", len(h.AttributeNames))
	}
	seen := make(map[string]struct{}, len(h.AttributeNames))
	for _, name := range h.AttributeNames {
		if name == "" {
			return fmt.Errorf("empty attribute name")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate attribute %q", name)
		}
		seen[name] = struct{}{}
	}
	for i, p := range h.Partitions {
		if len(p.Centroid) != h.Dim {
			return fmt.Errorf("partition %d: centroid has %d components, want %d", i, len(p.Centroid), h.Dim)
		}
		if p.VectorsBlob == "" || p.AttributesBlob == "" {
			return fmt.Errorf("partition %d: missing blob name", i)
		}
	}
	return nil
}

// attributeIndex returns the column of name, or -1.
func (h *Header) attributeIndex(name string) int {
	for i, n := range h.AttributeNames {
		if n == name {
			return i
		}
	}
	return -1
}
