// Package envelope wraps one encoded value in a small checksummed frame,
// optionally compressing the payload with zstd.
//
// Layout (little endian):
//
//	magic[2] version[1] flags[1] total_length[4] payload[...] crc32[4]
//
// total_length covers the whole frame including the CRC. The CRC is IEEE
// CRC-32 over every byte after the magic and before the CRC itself.
package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/rawbytedev/bencode"
)

const (
	Version     byte = 1
	headerSize       = 8
	trailerSize      = 4

	// maxDecodedSize bounds zstd output so a small frame cannot expand
	// without limit.
	maxDecodedSize = 256 << 20
)

var magic = [2]byte{0xBE, 0x0C}

// Flags describe how the payload is stored.
type Flags byte

const (
	FlagCompressed Flags = 1 << iota
)

var (
	ErrNotEnvelope    = errors.New("envelope: not an envelope")
	ErrVersion        = errors.New("envelope: unsupported version")
	ErrLengthMismatch = errors.New("envelope: length mismatch")
	ErrChecksum       = errors.New("envelope: crc mismatch")
	ErrTooLarge       = errors.New("envelope: payload too large")
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use, so one of
// each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("envelope: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		panic("envelope: zstd decoder initialization failed: " + err.Error())
	}
}

// Seal frames payload. With FlagCompressed the payload is stored
// zstd-compressed.
func Seal(payload []byte, flags Flags) ([]byte, error) {
	body := payload
	if flags&FlagCompressed != 0 {
		body = zstdEncoder.EncodeAll(payload, nil)
	}
	total := headerSize + len(body) + trailerSize
	if uint64(total) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	buf := &bytes.Buffer{}
	buf.Grow(total)
	buf.Write(magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(byte(flags))
	binary.Write(buf, binary.LittleEndian, uint32(total))
	buf.Write(body)

	out := buf.Bytes()
	crc := crc32.ChecksumIEEE(out[len(magic):])
	return binary.LittleEndian.AppendUint32(out, crc), nil
}

// Open checks a frame and returns its (decompressed) payload.
func Open(frame []byte) ([]byte, Flags, error) {
	if len(frame) < headerSize+trailerSize || frame[0] != magic[0] || frame[1] != magic[1] {
		return nil, 0, ErrNotEnvelope
	}
	if frame[2] != Version {
		return nil, 0, fmt.Errorf("%w: %d", ErrVersion, frame[2])
	}
	flags := Flags(frame[3])
	if length := binary.LittleEndian.Uint32(frame[4:]); int64(length) != int64(len(frame)) {
		return nil, 0, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, length, len(frame))
	}

	end := len(frame) - trailerSize
	want := binary.LittleEndian.Uint32(frame[end:])
	if crc32.ChecksumIEEE(frame[len(magic):end]) != want {
		return nil, 0, ErrChecksum
	}

	body := frame[headerSize:end]
	if flags&FlagCompressed != 0 {
		decoded, err := zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("envelope: zstd decompress: %w", err)
		}
		body = decoded
	}
	return body, flags, nil
}

// SealValue encodes v and frames the result.
func SealValue(v any, flags Flags) ([]byte, error) {
	payload, err := bencode.Encode(v)
	if err != nil {
		return nil, err
	}
	return Seal(payload, flags)
}

// OpenValue opens a frame and decodes the value inside it.
func OpenValue(frame []byte) (bencode.Value, error) {
	payload, _, err := Open(frame)
	if err != nil {
		return bencode.Value{}, err
	}
	return bencode.Decode(payload)
}
