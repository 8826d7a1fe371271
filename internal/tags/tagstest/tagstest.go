// Package tagstest creates minimal music files for tests.
package tagstest

import (
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// MP3 writes a single MPEG1 Layer3 frame (128kbps, 44100Hz, stereo) with no tags.
func MP3(t *testing.T, path string) string {
	t.Helper()

	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	mkdir(t, path)
	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
	return path
}

// FLAC writes a STREAMINFO block, an optional Vorbis comment block holding
// comments ("KEY=value"), and a stub audio frame.
func FLAC(t *testing.T, path string, comments ...string) string {
	t.Helper()

	mkdir(t, path)
	if err := os.WriteFile(path, FLACBytes(t, comments...), 0o600); err != nil {
		t.Fatalf("failed to create test FLAC: %v", err)
	}
	return path
}

// FLACBytes returns the content written by FLAC.
func FLACBytes(t *testing.T, comments ...string) []byte {
	t.Helper()

	// 4096 samples per block, 44100Hz, 2 channels, 16 bits
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := uint32(44100)<<12 | uint32(2-1)<<9 | uint32(16-1)<<4
	binary.BigEndian.PutUint32(info[10:14], packed)

	f := &flac.File{
		Meta:   []*flac.MetaDataBlock{{Type: flac.StreamInfo, Data: info}},
		Frames: flac.FrameData{0xff, 0xf8, 0x69, 0x08, 0x00, 0x00, 0x00, 0x00},
	}
	if len(comments) > 0 {
		cmts := flacvorbis.New()
		cmts.Comments = append(cmts.Comments, comments...)
		block := cmts.Marshal()
		f.Meta = append(f.Meta, &block)
	}
	return f.Marshal()
}

// FFmpeg encodes one second of sine wave with codec ("aac", "libopus",
// "libvorbis", "flac"). The test is skipped when ffmpeg is not available.
func FFmpeg(t *testing.T, path, codec string) string {
	t.Helper()

	mkdir(t, path)
	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", codec, path)
	cmd.Stderr = nil
	cmd.Stdout = nil
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available: %v", err)
	}
	return path
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
}
