// Package sniff detects attachment content types from magic bytes so the
// stored type never trusts the client-supplied header.
package sniff

import (
	"bytes"
	"errors"
	"io"
)

const headSize = 512

const FallbackMIME = "application/octet-stream"

// Detect reads up to the first 512 bytes and returns the detected MIME type
// along with the bytes consumed, so callers can re-prepend them to the
// stream. Unrecognized content falls back to application/octet-stream.
func Detect(r io.Reader) (string, []byte, error) {
	head := make([]byte, headSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]

	return DetectHead(head), head, nil
}

func DetectHead(head []byte) string {
	switch {
	case isPNG(head):
		return "image/png"
	case isJPEG(head):
		return "image/jpeg"
	case isGIF(head):
		return "image/gif"
	case isPDF(head):
		return "application/pdf"
	case isUTF8Text(head):
		return "text/plain; charset=utf-8"
	default:
		return FallbackMIME
	}
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isPDF(head []byte) bool {
	return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
}

func isUTF8Text(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	for _, b := range head {
		if b == 0 {
			return false
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}
