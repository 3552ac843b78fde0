package media

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textFrame(id, value string) []byte {
	body := append([]byte{0}, value...)
	var b bytes.Buffer
	b.WriteString(id)
	_ = binary.Write(&b, binary.BigEndian, uint32(len(body)))
	b.Write([]byte{0, 0})
	b.Write(body)
	return b.Bytes()
}

// id3 builds a minimal ID3v2.3 tag followed by a few bytes of fake audio.
func id3(frames ...[]byte) []byte {
	var body []byte
	for _, f := range frames {
		body = append(body, f...)
	}
	n := len(body)
	size := []byte{byte(n >> 21 & 0x7f), byte(n >> 14 & 0x7f), byte(n >> 7 & 0x7f), byte(n & 0x7f)}

	var b bytes.Buffer
	b.WriteString("ID3")
	b.Write([]byte{3, 0, 0})
	b.Write(size)
	b.Write(body)
	b.Write(make([]byte, 64))
	return b.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadInfoTags(t *testing.T) {
	path := writeFile(t, "song.mp3", id3(
		textFrame("TIT2", "Night Drive"),
		textFrame("TPE1", "Komorebi"),
		textFrame("TALB", "Tunnels"),
		textFrame("TYER", "2021"),
	))

	info, err := ReadInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "Night Drive", info.Title)
	assert.Equal(t, "Komorebi", info.Artist)
	assert.Equal(t, "Tunnels", info.Album)
	assert.Equal(t, 2021, info.Year)
	assert.Equal(t, "Komorebi - Night Drive", info.Label())

	_, err = info.CoverImage()
	assert.ErrorIs(t, err, ErrNoCover)
}

func TestReadInfoUntagged(t *testing.T) {
	path := writeFile(t, "field recording.wav", bytes.Repeat([]byte{1}, 300))

	info, err := ReadInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "field recording", info.Title)
	assert.Empty(t, info.Artist)
	assert.Equal(t, "field recording", info.Label())
}

func TestReadInfoMissing(t *testing.T) {
	_, err := ReadInfo(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

func TestCoverImageRejectsGarbage(t *testing.T) {
	info := Info{Cover: []byte("garbage")}
	_, err := info.CoverImage()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCover)
}
