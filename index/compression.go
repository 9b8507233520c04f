package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/searchsimilar/internal/conv"
)

// Compression identifies the block compression used by partition blobs.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast decode).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 means Data is stored raw.
const blockHeaderSize = 8

// maxBlockSize bounds the decoded size of a single block.
const maxBlockSize = 1 << 31

// compressBlock frames data as a single block. Data that does not shrink by
// at least 10% is stored raw.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	if uint64(len(data)) >= maxBlockSize {
		return nil, fmt.Errorf("block too large: %d bytes", len(data))
	}

	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}

	size, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, fmt.Errorf("block too large: %w", err)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], size)
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], size)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// decompressBlock decodes a block written by compressBlock. Trailing bytes
// after the block are rejected.
func decompressBlock(data []byte, c Compression) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, errors.New("block too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	body := data[blockHeaderSize:]

	if compressedSize == 0 {
		if uint64(len(body)) != uint64(uncompressedSize) {
			return nil, fmt.Errorf("raw block size %d, header says %d", len(body), uncompressedSize)
		}
		return body, nil
	}

	if uint64(len(body)) != uint64(compressedSize) {
		return nil, fmt.Errorf("compressed block size %d, header says %d", len(body), compressedSize)
	}

	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(body, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(body, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("compressed block with compression %s", c)
	}
}
