package app

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	imgclip "golang.design/x/clipboard"

	"inkpad/internal/pad"
	"inkpad/pkg/ink"
)

// systemClipboard keeps ink payloads on the OS text clipboard, armoured so
// they survive a plain-text round trip.
type systemClipboard struct{}

func (systemClipboard) WritePayload(b []byte) error {
	if err := clipboard.WriteAll(ink.ArmorPayload(b)); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

func (systemClipboard) ReadPayload() ([]byte, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read system clipboard: %w", err)
	}
	return ink.UnarmorPayload(s)
}

var (
	imageClipOnce sync.Once
	imageClipErr  error
)

// copyImage puts the rendered drawing on the clipboard as a PNG image.
func copyImage(p *pad.Pad) error {
	imageClipOnce.Do(func() { imageClipErr = imgclip.Init() })
	if imageClipErr != nil {
		return fmt.Errorf("image clipboard unavailable: %w", imageClipErr)
	}
	var buf bytes.Buffer
	if err := p.ExportPNG(&buf); err != nil {
		return err
	}
	imgclip.Write(imgclip.FmtImage, buf.Bytes())
	return nil
}
