//go:build !ffmpeg_embedded

package ffmpeg

// embeddedBundle always misses in default builds; bundles are downloaded
// on first use instead.
func embeddedBundle(string) ([]byte, bool, error) {
	return nil, false, nil
}
