package index

import (
	"fmt"
)

// vectorPartition holds the decoded contents of a vector blob.
type vectorPartition struct {
	dim     int
	ids     []uint64
	vectors []float32 // row-major, len(ids)*dim
}

func (p *vectorPartition) len() int { return len(p.ids) }

func (p *vectorPartition) vector(row int) []float32 {
	return p.vectors[row*p.dim : (row+1)*p.dim]
}

func (p *vectorPartition) sizeBytes() int64 {
	return int64(len(p.ids))*8 + int64(len(p.vectors))*4
}

// EncodeVectorBlob encodes the ids and row-major vectors of one partition.
//
// Block content: Count (4 bytes), Count ids (8 bytes each), Count*dim float32.
func EncodeVectorBlob(ids []uint64, vectors []float32, dim int, c Compression) ([]byte, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	if len(vectors) != len(ids)*dim {
		return nil, &ErrDimensionMismatch{Expected: len(ids) * dim, Actual: len(vectors)}
	}

	pb := newPayloadBuffer(make([]byte, 0, 4+8*len(ids)+4*len(vectors)))
	pb.writeLen32(len(ids))
	for _, id := range ids {
		pb.writeUint64(id)
	}
	pb.writeFloat32s(vectors)
	if pb.err != nil {
		return nil, pb.err
	}
	return compressBlock(pb.buf, c)
}

func decodeVectorBlob(data []byte, dim int, c Compression, wantCount uint32) (*vectorPartition, error) {
	raw, err := decompressBlock(data, c)
	if err != nil {
		return nil, corruptf("vector block: %v", err)
	}

	pb := newPayloadBuffer(raw)
	count := pb.readUint32()
	if pb.err != nil {
		return nil, corruptf("vector block: %v", pb.err)
	}
	if count != wantCount {
		return nil, corruptf("vector block holds %d vectors, header says %d", count, wantCount)
	}
	if want := uint64(count) * (8 + 4*uint64(dim)); want != uint64(pb.remaining()) {
		return nil, corruptf("vector block payload is %d bytes, want %d", pb.remaining(), want)
	}

	p := &vectorPartition{
		dim:     dim,
		ids:     make([]uint64, count),
		vectors: make([]float32, int(count)*dim),
	}
	for i := range p.ids {
		p.ids[i] = pb.readUint64()
	}
	pb.readFloat32s(p.vectors)
	if pb.err != nil {
		return nil, corruptf("vector block: %v", pb.err)
	}
	return p, nil
}

// attributeTable holds the decoded contents of an attribute blob.
type attributeTable struct {
	rows  int
	attrs int
	cells []AttributeValue // row-major; nil cells are absent
	size  int64
}

func (t *attributeTable) get(row, col int) AttributeValue {
	return t.cells[row*t.attrs+col]
}

func (t *attributeTable) sizeBytes() int64 {
	return t.size
}

// EncodeAttributeBlob encodes the attribute table of one partition. Each row
// must have exactly attrs cells; nil cells are stored as absent.
//
// Block content: Rows (4 bytes), Attrs (2 bytes), then per row per attribute
// a type tag (1 byte) and its payload.
func EncodeAttributeBlob(rows [][]AttributeValue, attrs int, c Compression) ([]byte, error) {
	if attrs < 0 || attrs > 0xFFFF {
		return nil, fmt.Errorf("invalid attribute count %d", attrs)
	}

	pb := newPayloadBuffer(nil)
	pb.writeLen32(len(rows))
	pb.writeLen16(attrs)
	for i, row := range rows {
		if len(row) != attrs {
			return nil, fmt.Errorf("row %d has %d attributes, want %d", i, len(row), attrs)
		}
		for _, v := range row {
			writeAttribute(pb, v)
		}
	}
	if pb.err != nil {
		return nil, pb.err
	}
	return compressBlock(pb.buf, c)
}

func decodeAttributeBlob(data []byte, c Compression, wantRows uint32, wantAttrs int) (*attributeTable, error) {
	raw, err := decompressBlock(data, c)
	if err != nil {
		return nil, corruptf("attribute block: %v", err)
	}

	pb := newPayloadBuffer(raw)
	rows := pb.readUint32()
	attrs := int(pb.readUint16())
	if pb.err != nil {
		return nil, corruptf("attribute block: %v", pb.err)
	}
	if rows != wantRows || attrs != wantAttrs {
		return nil, corruptf("attribute block is %dx%d, header says %dx%d", rows, attrs, wantRows, wantAttrs)
	}
	// Every cell carries at least its tag byte.
	if uint64(rows)*uint64(attrs) > uint64(pb.remaining()) {
		return nil, corruptf("attribute block too short for %d cells", uint64(rows)*uint64(attrs))
	}

	t := &attributeTable{
		rows:  int(rows),
		attrs: attrs,
		cells: make([]AttributeValue, int(rows)*attrs),
	}
	for i := range t.cells {
		v, err := readAttribute(pb)
		if err != nil {
			return nil, corruptf("attribute block cell %d: %v", i, err)
		}
		t.cells[i] = v
	}
	if pb.remaining() != 0 {
		return nil, corruptf("%d trailing bytes in attribute block", pb.remaining())
	}
	t.size = int64(len(raw)) + int64(len(t.cells))*16
	return t, nil
}
