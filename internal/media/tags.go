// Package media reads the tags of the audio file a render is set to: the
// title and artist shown in run listings and the embedded cover art used as
// a still background.
package media

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/san-kum/beatsim/internal/raster"
)

var ErrNoCover = errors.New("media: no cover art")

type Info struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
	Format string
	Cover  []byte
}

// ReadInfo opens path and reads its tags. Files without readable tags are
// not an error: the title falls back to the file name.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("media: open: %w", err)
	}
	defer f.Close()

	info := Info{
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info, nil
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		info.Title = t
	}
	info.Artist = strings.TrimSpace(m.Artist())
	info.Album = strings.TrimSpace(m.Album())
	info.Genre = strings.TrimSpace(m.Genre())
	info.Year = m.Year()
	info.Format = string(m.Format())
	if pic := m.Picture(); pic != nil {
		info.Cover = pic.Data
	}
	return info, nil
}

// Label is "Artist - Title", or just the title when the artist is unknown.
func (i Info) Label() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Artist + " - " + i.Title
}

func (i Info) CoverImage() (image.Image, error) {
	if len(i.Cover) == 0 {
		return nil, ErrNoCover
	}
	img, err := raster.DecodeImage(i.Cover)
	if err != nil {
		return nil, fmt.Errorf("media: cover: %w", err)
	}
	return img, nil
}
