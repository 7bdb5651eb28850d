package sniff

import (
	"bytes"
	"io"
	"testing"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, "image/png"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
		{"gif", []byte("GIF89a trailer"), "image/gif"},
		{"pdf", []byte("%PDF-1.7 ..."), "application/pdf"},
		{"text", []byte("buy milk\nwalk dog\n"), "text/plain; charset=utf-8"},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03}, FallbackMIME},
		{"empty", nil, FallbackMIME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHead(tt.head); got != tt.want {
				t.Errorf("DetectHead = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectPreservesConsumedBytes(t *testing.T) {
	payload := append([]byte("%PDF-1.7 "), bytes.Repeat([]byte("x"), 1024)...)
	r := bytes.NewReader(payload)

	contentType, head, err := Detect(r)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("contentType = %q", contentType)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	reassembled := append(append([]byte(nil), head...), rest...)
	if !bytes.Equal(reassembled, payload) {
		t.Fatal("head + remainder does not reproduce the original stream")
	}
}
