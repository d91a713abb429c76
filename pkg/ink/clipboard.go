package ink

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

const (
	PayloadMagic    = "INKCLIP1"
	PayloadVersion1 = uint16(1)
	FlagCompressed  = uint16(1 << 0)

	ArmorPrefix = "inkpad-clip:"

	digestSize    = blake2b.Size256
	payloadHeader = len(PayloadMagic) + 2 + 2 + 4 + 4 + digestSize
	strokeHeader  = 4 + 8 + 1 + 1 + 4
	pointSize     = 8 + 8 + 4 + 8

	attrFlagHighlighter = uint8(1 << 0)
)

var (
	ErrInvalidMagic       = errors.New("ink: invalid clipboard magic")
	ErrUnsupportedVersion = errors.New("ink: unsupported clipboard version")
	ErrChecksumMismatch   = errors.New("ink: clipboard checksum mismatch")
	ErrMalformedPayload   = errors.New("ink: malformed clipboard payload")
	ErrClipboardEmpty     = errors.New("ink: clipboard empty")
)

type EncodeOptions struct {
	Compression bool
}

// PayloadInfo describes a payload without decoding its strokes.
type PayloadInfo struct {
	Version     uint16
	Compressed  bool
	StrokeCount uint32
	BodyLength  uint32
}

// EncodeStrokes serializes strokes into a self-checking clipboard payload.
func EncodeStrokes(strokes []*Stroke, opts EncodeOptions) ([]byte, error) {
	body := make([]byte, 0, len(strokes)*strokeHeader)
	count := uint32(0)
	for _, s := range strokes {
		if s == nil || s.Len() == 0 {
			continue
		}
		body = encodeStroke(body, s)
		count++
	}

	flags := uint16(0)
	if opts.Compression {
		comp, err := compressBytes(body)
		if err != nil {
			return nil, fmt.Errorf("compress payload: %w", err)
		}
		body = comp
		flags |= FlagCompressed
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: body too large", ErrMalformedPayload)
	}

	sum := blake2b.Sum256(body)
	out := make([]byte, 0, payloadHeader+len(body))
	out = append(out, PayloadMagic...)
	out = appendU16(out, PayloadVersion1)
	out = appendU16(out, flags)
	out = appendU32(out, count)
	out = appendU32(out, uint32(len(body)))
	out = append(out, sum[:]...)
	out = append(out, body...)
	return out, nil
}

// InspectPayload validates the header and digest and reports the payload shape.
func InspectPayload(b []byte) (PayloadInfo, error) {
	info, _, err := openPayload(b)
	return info, err
}

// DecodeStrokes rebuilds the strokes stored in b. Every stroke gets a fresh id.
func DecodeStrokes(b []byte) ([]*Stroke, error) {
	info, body, err := openPayload(b)
	if err != nil {
		return nil, err
	}
	if info.Compressed {
		body, err = decompressBytes(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	out := make([]*Stroke, 0, min(int(info.StrokeCount), len(body)/strokeHeader))
	for i := uint32(0); i < info.StrokeCount; i++ {
		var s *Stroke
		s, body, err = decodeStroke(body)
		if err != nil {
			return nil, fmt.Errorf("stroke %d: %w", i, err)
		}
		out = append(out, s)
	}
	if len(body) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedPayload, len(body))
	}
	return out, nil
}

func openPayload(b []byte) (PayloadInfo, []byte, error) {
	info := PayloadInfo{}
	if len(b) < len(PayloadMagic) || string(b[:len(PayloadMagic)]) != PayloadMagic {
		return info, nil, ErrInvalidMagic
	}
	if len(b) < payloadHeader {
		return info, nil, fmt.Errorf("%w: short header", ErrMalformedPayload)
	}
	off := len(PayloadMagic)
	info.Version = binary.LittleEndian.Uint16(b[off : off+2])
	if info.Version != PayloadVersion1 {
		return info, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, info.Version)
	}
	flags := binary.LittleEndian.Uint16(b[off+2 : off+4])
	info.Compressed = flags&FlagCompressed != 0
	info.StrokeCount = binary.LittleEndian.Uint32(b[off+4 : off+8])
	info.BodyLength = binary.LittleEndian.Uint32(b[off+8 : off+12])
	digest := b[off+12 : off+12+digestSize]
	body := b[payloadHeader:]
	if uint64(len(body)) != uint64(info.BodyLength) {
		return info, nil, fmt.Errorf("%w: body length %d, header says %d", ErrMalformedPayload, len(body), info.BodyLength)
	}
	sum := blake2b.Sum256(body)
	if !bytes.Equal(sum[:], digest) {
		return info, nil, ErrChecksumMismatch
	}
	return info, body, nil
}

func encodeStroke(dst []byte, s *Stroke) []byte {
	a := s.attrs
	dst = appendU32(dst, packRGBA(a.Color))
	dst = appendU64(dst, math.Float64bits(a.Width))
	dst = append(dst, byte(a.Tip))
	flags := uint8(0)
	if a.Highlighter {
		flags |= attrFlagHighlighter
	}
	dst = append(dst, flags)
	dst = appendU32(dst, uint32(len(s.points)))
	for _, p := range s.points {
		dst = appendU64(dst, math.Float64bits(p.X))
		dst = appendU64(dst, math.Float64bits(p.Y))
		dst = appendU32(dst, math.Float32bits(p.Pressure))
		dst = appendU64(dst, p.Timestamp)
	}
	return dst
}

func decodeStroke(src []byte) (*Stroke, []byte, error) {
	if len(src) < strokeHeader {
		return nil, nil, fmt.Errorf("%w: short stroke header", ErrMalformedPayload)
	}
	attrs := DrawingAttributes{
		Color: unpackRGBA(binary.LittleEndian.Uint32(src[0:4])),
		Width: math.Float64frombits(binary.LittleEndian.Uint64(src[4:12])),
		Tip:   PenTip(src[12]),
	}
	if !isValidPenTip(attrs.Tip) {
		attrs.Tip = PenTipCircle
	}
	attrs.Highlighter = src[13]&attrFlagHighlighter != 0
	n := binary.LittleEndian.Uint32(src[14:18])
	src = src[strokeHeader:]
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedPayload, ErrEmptyStroke)
	}
	if uint64(len(src)) < uint64(n)*pointSize {
		return nil, nil, fmt.Errorf("%w: truncated points", ErrMalformedPayload)
	}
	pts := make([]InkPoint, n)
	for i := range pts {
		pts[i] = InkPoint{
			Point: Point{
				X: math.Float64frombits(binary.LittleEndian.Uint64(src[0:8])),
				Y: math.Float64frombits(binary.LittleEndian.Uint64(src[8:16])),
			},
			Pressure:  math.Float32frombits(binary.LittleEndian.Uint32(src[16:20])),
			Timestamp: binary.LittleEndian.Uint64(src[20:28]),
		}
		src = src[pointSize:]
	}
	return newStroke(pts, attrs), src, nil
}

func packRGBA(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func unpackRGBA(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// ArmorPayload wraps a binary payload for clipboards that only carry text.
func ArmorPayload(b []byte) string {
	return ArmorPrefix + base64.StdEncoding.EncodeToString(b)
}

// UnarmorPayload reverses ArmorPayload. Text without the prefix is reported as
// ErrClipboardEmpty so foreign clipboard content pastes as nothing.
func UnarmorPayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, ArmorPrefix) {
		return nil, ErrClipboardEmpty
	}
	b, err := base64.StdEncoding.DecodeString(s[len(ArmorPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return b, nil
}

// Clipboard moves payloads to and from wherever copies are kept.
type Clipboard interface {
	WritePayload([]byte) error
	ReadPayload() ([]byte, error)
}

// MemoryClipboard keeps the last payload in process memory.
type MemoryClipboard struct {
	mu   sync.Mutex
	data []byte
}

func (m *MemoryClipboard) WritePayload(b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), b...)
	return nil
}

func (m *MemoryClipboard) ReadPayload() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return nil, ErrClipboardEmpty
	}
	return append([]byte(nil), m.data...), nil
}

func appendU16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func compressBytes(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressBytes(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
