package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/searchsimilar/internal/conv"
)

// payloadBuffer is a little-endian append/consume buffer with a sticky error.
type payloadBuffer struct {
	buf []byte
	pos int
	err error
}

func newPayloadBuffer(b []byte) *payloadBuffer {
	return &payloadBuffer{buf: b}
}

func (p *payloadBuffer) writeUint8(v uint8) {
	if p.err != nil {
		return
	}
	p.buf = append(p.buf, v)
}

func (p *payloadBuffer) writeUint16(v uint16) {
	if p.err != nil {
		return
	}
	p.buf = binary.LittleEndian.AppendUint16(p.buf, v)
}

func (p *payloadBuffer) writeUint32(v uint32) {
	if p.err != nil {
		return
	}
	p.buf = binary.LittleEndian.AppendUint32(p.buf, v)
}

func (p *payloadBuffer) writeUint64(v uint64) {
	if p.err != nil {
		return
	}
	p.buf = binary.LittleEndian.AppendUint64(p.buf, v)
}

// writeLen16 writes n as a u16, failing if it does not fit.
func (p *payloadBuffer) writeLen16(n int) {
	if p.err != nil {
		return
	}
	v, err := conv.IntToUint16(n)
	if err != nil {
		p.err = err
		return
	}
	p.writeUint16(v)
}

// writeLen32 writes n as a u32, failing if it does not fit.
func (p *payloadBuffer) writeLen32(n int) {
	if p.err != nil {
		return
	}
	v, err := conv.IntToUint32(n)
	if err != nil {
		p.err = err
		return
	}
	p.writeUint32(v)
}

func (p *payloadBuffer) writeFloat32s(vs []float32) {
	if p.err != nil {
		return
	}
	for _, v := range vs {
		p.buf = binary.LittleEndian.AppendUint32(p.buf, math.Float32bits(v))
	}
}

// writeName writes a u16 length-prefixed string.
func (p *payloadBuffer) writeName(s string) {
	if p.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		p.err = fmt.Errorf("string too long: %d", len(s))
		return
	}
	p.writeLen16(len(s))
	p.buf = append(p.buf, s...)
}

// writeText writes a u32 length-prefixed string.
func (p *payloadBuffer) writeText(s string) {
	if p.err != nil {
		return
	}
	p.writeLen32(len(s))
	p.buf = append(p.buf, s...)
}

func (p *payloadBuffer) take(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n < 0 || p.pos+n > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}

func (p *payloadBuffer) readUint8() uint8 {
	b := p.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (p *payloadBuffer) readUint16() uint16 {
	b := p.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (p *payloadBuffer) readUint32() uint32 {
	b := p.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (p *payloadBuffer) readUint64() uint64 {
	b := p.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// readFloat32s decodes n floats into dst, which must have length n.
func (p *payloadBuffer) readFloat32s(dst []float32) {
	b := p.take(4 * len(dst))
	if b == nil {
		return
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
}

func (p *payloadBuffer) readName() string {
	n := p.readUint16()
	return string(p.take(int(n)))
}

func (p *payloadBuffer) readText() string {
	n, err := conv.Uint32ToInt(p.readUint32())
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return ""
	}
	return string(p.take(n))
}

// remaining returns the number of unread bytes.
func (p *payloadBuffer) remaining() int {
	return len(p.buf) - p.pos
}
