package ink

import (
	"encoding/binary"
	"errors"
	"image/color"
	"strings"
	"testing"
)

func sampleStrokes(t *testing.T) []*Stroke {
	t.Helper()
	a, err := NewStroke(linePoints(4, 2.5), DrawingAttributes{Color: color.RGBA{R: 0xAA, G: 0x10, B: 0x20, A: 0x80}, Width: 3.5, Tip: PenTipRectangle, Highlighter: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewStroke([]InkPoint{{Point: Pt(-1.25, 9), Pressure: 0.5, Timestamp: 42}}, DefaultDrawingAttributes())
	if err != nil {
		t.Fatal(err)
	}
	return []*Stroke{a, b}
}

func assertSameStrokes(t *testing.T, got, want []*Stroke) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("stroke count %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Attributes() != want[i].Attributes() {
			t.Fatalf("stroke %d attrs %+v want %+v", i, got[i].Attributes(), want[i].Attributes())
		}
		gp, wp := got[i].Points(), want[i].Points()
		if len(gp) != len(wp) {
			t.Fatalf("stroke %d has %d points want %d", i, len(gp), len(wp))
		}
		for j := range wp {
			if gp[j] != wp[j] {
				t.Fatalf("stroke %d point %d = %+v want %+v", i, j, gp[j], wp[j])
			}
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		want := sampleStrokes(t)
		blob, err := EncodeStrokes(want, EncodeOptions{Compression: compress})
		if err != nil {
			t.Fatalf("encode (compress=%v): %v", compress, err)
		}
		got, err := DecodeStrokes(blob)
		if err != nil {
			t.Fatalf("decode (compress=%v): %v", compress, err)
		}
		assertSameStrokes(t, got, want)
	}
}

func TestInspectPayload(t *testing.T) {
	blob, err := EncodeStrokes(sampleStrokes(t), EncodeOptions{Compression: true})
	if err != nil {
		t.Fatal(err)
	}
	info, err := InspectPayload(blob)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Version != PayloadVersion1 || !info.Compressed || info.StrokeCount != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	if int(info.BodyLength) != len(blob)-payloadHeader {
		t.Fatalf("body length %d, blob body %d", info.BodyLength, len(blob)-payloadHeader)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob, _ := EncodeStrokes(sampleStrokes(t), EncodeOptions{})
	copy(blob, "BADCLIP!")
	if _, err := DecodeStrokes(blob); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	blob, _ := EncodeStrokes(sampleStrokes(t), EncodeOptions{})
	binary.LittleEndian.PutUint16(blob[len(PayloadMagic):], 9)
	if _, err := DecodeStrokes(blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	blob, _ := EncodeStrokes(sampleStrokes(t), EncodeOptions{})
	blob[len(blob)-1] ^= 0xFF
	if _, err := DecodeStrokes(blob); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if _, err := DecodeStrokes(blob[:payloadHeader-1]); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for short header, got %v", err)
	}
}

func TestDecodeRejectsTruncatedBody(t *testing.T) {
	blob, _ := EncodeStrokes(sampleStrokes(t), EncodeOptions{})
	// Claim an extra stroke the body does not carry.
	binary.LittleEndian.PutUint32(blob[len(PayloadMagic)+4:], 3)
	if _, err := DecodeStrokes(blob); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestArmorRoundTrip(t *testing.T) {
	blob, _ := EncodeStrokes(sampleStrokes(t), EncodeOptions{})
	text := ArmorPayload(blob)
	if !strings.HasPrefix(text, ArmorPrefix) {
		t.Fatalf("missing armor prefix: %q", text[:16])
	}
	back, err := UnarmorPayload("  " + text + "\n")
	if err != nil {
		t.Fatalf("unarmor: %v", err)
	}
	if string(back) != string(blob) {
		t.Fatalf("armor round trip changed the payload")
	}
	if _, err := UnarmorPayload("hello world"); !errors.Is(err, ErrClipboardEmpty) {
		t.Fatalf("foreign text should read as empty, got %v", err)
	}
	if _, err := UnarmorPayload(ArmorPrefix + "!!!"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("bad base64 should be malformed, got %v", err)
	}
}

func TestMemoryClipboard(t *testing.T) {
	var cb MemoryClipboard
	if _, err := cb.ReadPayload(); !errors.Is(err, ErrClipboardEmpty) {
		t.Fatalf("expected ErrClipboardEmpty, got %v", err)
	}
	src := []byte{1, 2, 3}
	if err := cb.WritePayload(src); err != nil {
		t.Fatal(err)
	}
	src[0] = 9
	got, err := cb.ReadPayload()
	if err != nil || len(got) != 3 || got[0] != 1 {
		t.Fatalf("clipboard returned %v, %v", got, err)
	}
}
