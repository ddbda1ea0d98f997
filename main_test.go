package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shroud/config"
)

// writeNoisePNG stores a noisy truecolor image, so that the homogeneous
// filter keeps almost every point.
func writeNoisePNG(t *testing.T, path string, w, h int) {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	state := uint32(2463534242)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			state ^= state << 13
			state ^= state >> 17
			state ^= state << 5
			m.SetNRGBA(x, y, color.NRGBA{uint8(state), uint8(state >> 8), uint8(state >> 16), 0xff})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func TestEmbedExtract(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	carrier := filepath.Join(dir, "photo.png")
	writeNoisePNG(t, carrier, 100, 100)
	attachment := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(attachment, []byte{1, 2, 3, 4, 5}, 0600))
	overlay := filepath.Join(dir, "overlay.png")

	var out bytes.Buffer
	code := run([]string{"embed", "-c", conf, "-k", "pw1", "-m", "hello", "-f", attachment,
		"-visualize", overlay, carrier}, &out)
	require.Equal(t, 0, code)

	steganogram := filepath.Join(dir, "photo_embed.png")
	assert.FileExists(t, steganogram)
	assert.FileExists(t, overlay)
	// the default configuration was created on first use
	assert.FileExists(t, conf)

	extracted := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(extracted, 0700))
	out.Reset()
	code = run([]string{"extract", "-c", conf, "-k", "pw1", "-o", extracted, steganogram}, &out)
	require.Equal(t, 0, code)
	assert.Equal(t, "hello\n", out.String())

	content, err := os.ReadFile(filepath.Join(extracted, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, content)

	out.Reset()
	code = run([]string{"extract", "-c", conf, "-k", "pw2", "-o", extracted, steganogram}, &out)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
}

func TestEmbedWithoutNoiseDetection(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	carrier := filepath.Join(dir, "photo.png")
	writeNoisePNG(t, carrier, 40, 40)
	stego := filepath.Join(dir, "stego.png")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"embed", "-c", conf, "-k", "k", "-m", "msg", "-o", stego,
		"--disable-noise-detection", carrier}, &out))
	require.Equal(t, 0, run([]string{"extract", "-c", conf, "-k", "k",
		"--disable-noise-detection", stego}, &out))
	assert.Equal(t, "msg\n", out.String())
}

func TestCapacity(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	images := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(images, 0700))
	writeNoisePNG(t, filepath.Join(images, "a.png"), 100, 100)
	writeNoisePNG(t, filepath.Join(images, "b.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(images, "notes.txt"), []byte("x"), 0600))

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"capacity", "-c", conf, "--disable-noise-detection", images}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, filepath.Join(images, "a.png")+": 29.3 KB", lines[0])
	assert.Equal(t, filepath.Join(images, "b.png")+": 300 B", lines[1])

	assert.Equal(t, 1, run([]string{"capacity", "-c", conf, filepath.Join(images, "notes.txt")}, &out))
}

func TestReadLog(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	c := config.DefaultConfig()
	c.Logger.Filename = filepath.Join(dir, "log.log")
	c.Logger.IsColored = false
	require.NoError(t, config.SaveConfig(conf, "", c))

	carrier := filepath.Join(dir, "photo.png")
	writeNoisePNG(t, carrier, 30, 30)
	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"embed", "-c", conf, "-k", "k", "-m", "m", carrier}, &out))

	out.Reset()
	require.Equal(t, 0, run([]string{"readlog", "-c", conf}, &out))
	assert.Contains(t, out.String(), "[INFO] Embedding data...")
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run(nil, &out))
	assert.Contains(t, out.String(), "Usage: shroud")

	conf := filepath.Join(t.TempDir(), "config.yaml")
	assert.Equal(t, 2, run([]string{"unknown"}, &out))
	assert.Equal(t, 2, run([]string{"embed", "-c", conf, "-k", "k", "image.png"}, &out))
	assert.Equal(t, 2, run([]string{"extract", "-c", conf}, &out))
	assert.Equal(t, 1, run([]string{"extract", "-c", conf, "-k", "k", "missing.png"}, &out))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", formatSize(0))
	assert.Equal(t, "1023 B", formatSize(1023))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "3.0 MB", formatSize(3<<20))
}
