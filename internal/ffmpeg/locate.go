package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	envFFmpegPath  = "CAPCANVAS_FFMPEG_PATH"
	envFFprobePath = "CAPCANVAS_FFPROBE_PATH"
	// set to any value to never download a bundle
	envNoDownload = "CAPCANVAS_FFMPEG_NO_DOWNLOAD"
)

// ErrNotFound means neither PATH, the cache nor a bundle yielded binaries.
var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Locator decides where ffmpeg and ffprobe come from: explicit env
// overrides, then PATH, then the user cache, then an embedded or
// downloaded bundle.
type Locator struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
	CacheDir string
	Download bool
	GOOS     string
	GOARCH   string
}

// DefaultLocator reads the real environment.
func DefaultLocator() *Locator {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return &Locator{
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		CacheDir: cacheDir,
		Download: os.Getenv(envNoDownload) == "",
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
	}
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates the binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = DefaultLocator().Locate()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func (l *Locator) Locate() (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  l.Getenv(envFFmpegPath),
		FFprobe: l.Getenv(envFFprobePath),
	}
	if paths.complete() {
		return paths, nil
	}

	if paths.FFmpeg == "" {
		if found, err := l.LookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := l.LookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.complete() {
		return paths, nil
	}

	return l.install()
}

// InstallDir is where bundled binaries are unpacked.
func (l *Locator) InstallDir() string {
	return filepath.Join(
		l.CacheDir,
		"capcanvas",
		"ffmpeg",
		ffmpegReleaseVersion,
		l.GOOS,
		l.GOARCH,
	)
}

func (l *Locator) cachedPaths() BinaryPaths {
	dir := l.InstallDir()
	suffix := executableSuffix(l.GOOS)
	return BinaryPaths{
		FFmpeg:  filepath.Join(dir, "ffmpeg"+suffix),
		FFprobe: filepath.Join(dir, "ffprobe"+suffix),
	}
}

func (l *Locator) install() (BinaryPaths, error) {
	assetName, err := assetForPlatform(l.GOOS, l.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	paths := l.cachedPaths()
	if paths.exist() {
		return paths, nil
	}

	installDir := l.InstallDir()
	embeddedUsed, err := extractEmbedded(assetName, installDir)
	if err != nil {
		return BinaryPaths{}, err
	}

	if !embeddedUsed {
		if !l.Download {
			return BinaryPaths{}, ErrNotFound
		}
		if err := os.MkdirAll(installDir, 0o755); err != nil {
			return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
		}
		if err := downloadAndExtract(assetName, installDir); err != nil {
			return BinaryPaths{}, err
		}
	}

	if !paths.exist() {
		return BinaryPaths{}, fmt.Errorf("%w after extraction", ErrNotFound)
	}
	if err := paths.makeExecutable(l.GOOS); err != nil {
		return BinaryPaths{}, err
	}
	return paths, nil
}

func (p BinaryPaths) complete() bool {
	return p.FFmpeg != "" && p.FFprobe != ""
}

func (p BinaryPaths) exist() bool {
	return fileExists(p.FFmpeg) && fileExists(p.FFprobe)
}

func (p BinaryPaths) makeExecutable(goos string) error {
	if goos == "windows" {
		return nil
	}
	if err := os.Chmod(p.FFmpeg, 0o755); err != nil {
		return fmt.Errorf("chmod ffmpeg: %w", err)
	}
	if err := os.Chmod(p.FFprobe, 0o755); err != nil {
		return fmt.Errorf("chmod ffprobe: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
