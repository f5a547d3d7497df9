package renderer

import (
	"image"

	"RainyDay/internal/gpu"
	"RainyDay/internal/loader"
	"RainyDay/internal/logger"

	"go.uber.org/zap"
)

// ImageSource decodes an image file. It is loader.LoadImage outside of tests.
type ImageSource func(path string, flip bool) (*image.RGBA, error)

type TextureStats struct {
	Loaded      int
	CacheHits   int
	CacheMisses int
}

// TextureCache uploads each 2D texture file once and hands out the same id
// to every mesh that references it.
type TextureCache struct {
	dev    gpu.Device
	decode ImageSource
	byPath map[string]uint32
	stats  TextureStats
}

func NewTextureCache(dev gpu.Device, decode ImageSource) *TextureCache {
	if decode == nil {
		decode = loader.LoadImage
	}
	return &TextureCache{dev: dev, decode: decode, byPath: make(map[string]uint32)}
}

// Load returns the texture for path, uploading it on first use. Images are
// flipped so row 0 is the bottom.
func (tc *TextureCache) Load(path string) (uint32, error) {
	if id, ok := tc.byPath[path]; ok {
		tc.stats.CacheHits++
		logger.Log.Debug("Texture cache hit", zap.String("path", path), zap.Uint32("textureID", id))
		return id, nil
	}
	tc.stats.CacheMisses++

	img, err := tc.decode(path, true)
	if err != nil {
		return 0, err
	}
	id := tc.dev.NewTexture2D(img)
	tc.byPath[path] = id
	tc.stats.Loaded++

	logger.Log.Info("Texture loaded and cached",
		zap.String("path", path),
		zap.Uint32("textureID", id),
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", img.Rect.Dy()))
	return id, nil
}

func (tc *TextureCache) Stats() TextureStats {
	return tc.stats
}

// Clear deletes every cached texture.
func (tc *TextureCache) Clear() {
	for _, id := range tc.byPath {
		tc.dev.DeleteTexture(id)
	}
	tc.byPath = make(map[string]uint32)
	tc.stats.Loaded = 0
}
