//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"errors"
	"io/fs"
	"path"
)

// Release zips dropped into assets/ are compiled in when building with
// -tags ffmpeg_embedded, so first run works offline.
//
//go:embed assets/*
var assets embed.FS

func embeddedBundle(name string) ([]byte, bool, error) {
	data, err := fs.ReadFile(assets, path.Join("assets", name))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return data, true, nil
}
