package loader

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"RainyDay/internal/logger"

	"go.uber.org/zap"
)

const (
	meshMagic   uint32 = 0x4D455348 // "MESH"
	meshVersion uint32 = 2
)

var ErrStaleCache = errors.New("loader: mesh cache is stale")

// Fingerprint identifies the OBJ file a cache entry was built from.
type Fingerprint struct {
	ModTime int64
	Size    int64
}

// CachedOBJ returns a loader that keeps a compressed binary copy of every
// parsed OBJ under dir and reuses it while the OBJ file is unchanged.
// MTL edits are not detected; clear dir after changing materials.
func CachedOBJ(dir string) func(path string) (*MeshData, error) {
	return func(path string) (*MeshData, error) {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		src := Fingerprint{ModTime: info.ModTime().UnixNano(), Size: info.Size()}
		cachePath := filepath.Join(dir, filepath.Base(path)+".mesh")

		if mesh, err := readCache(cachePath, src); err == nil {
			logger.Log.Debug("Model loaded from cache", zap.String("path", path), zap.String("cache", cachePath))
			return mesh, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Log.Info("Rebuilding mesh cache", zap.String("cache", cachePath), zap.Error(err))
		}

		mesh, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		if err := writeCache(cachePath, src, mesh); err != nil {
			logger.Log.Warn("Failed to write mesh cache", zap.String("cache", cachePath), zap.Error(err))
		}
		return mesh, nil
	}
}

func readCache(path string, want Fingerprint) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	got, mesh, err := DecodeMesh(f)
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, ErrStaleCache
	}
	return mesh, nil
}

func writeCache(path string, src Fingerprint, mesh *MeshData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeMesh(&buf, src, mesh); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// EncodeMesh writes mesh in the gzip-compressed cache format.
func EncodeMesh(w io.Writer, src Fingerprint, mesh *MeshData) error {
	gz := gzip.NewWriter(w)
	e := &encoder{w: gz}
	e.put(meshMagic)
	e.put(meshVersion)
	e.put(src)
	e.str(mesh.Name)
	e.put(uint32(len(mesh.Vertices)))
	e.put(mesh.Vertices)
	e.put(uint32(len(mesh.Indices)))
	e.put(mesh.Indices)

	e.put(mesh.Material != nil)
	if m := mesh.Material; m != nil {
		e.str(m.Name)
		e.put(m.DiffuseColor)
		e.put(m.SpecularColor)
		e.put(m.Shininess)
		e.put(m.Alpha)
		e.str(m.AlbedoPath)
	}
	if e.err != nil {
		return e.err
	}
	return gz.Close()
}

// DecodeMesh reads a mesh written by EncodeMesh along with the source it was
// built from.
func DecodeMesh(r io.Reader) (Fingerprint, *MeshData, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Fingerprint{}, nil, fmt.Errorf("loader: mesh cache: %w", err)
	}
	defer gz.Close()

	d := &decoder{r: gz}
	var magic, version uint32
	d.get(&magic)
	d.get(&version)
	if d.err == nil && magic != meshMagic {
		return Fingerprint{}, nil, fmt.Errorf("loader: invalid mesh cache magic %x", magic)
	}
	if d.err == nil && version != meshVersion {
		return Fingerprint{}, nil, fmt.Errorf("loader: unsupported mesh cache version %d", version)
	}

	var src Fingerprint
	mesh := &MeshData{}
	d.get(&src)
	mesh.Name = d.str()
	mesh.Vertices = make([]float32, d.count())
	d.get(mesh.Vertices)
	mesh.Indices = make([]uint32, d.count())
	d.get(mesh.Indices)

	var hasMaterial bool
	d.get(&hasMaterial)
	if hasMaterial {
		m := &Material{Name: d.str()}
		d.get(&m.DiffuseColor)
		d.get(&m.SpecularColor)
		d.get(&m.Shininess)
		d.get(&m.Alpha)
		m.AlbedoPath = d.str()
		mesh.Material = m
	}
	if d.err != nil {
		return Fingerprint{}, nil, fmt.Errorf("loader: mesh cache: %w", d.err)
	}
	return src, mesh, nil
}

// maxCacheElements bounds slice lengths read from a corrupt file.
const maxCacheElements = 1 << 28

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) str(s string) {
	e.put(uint32(len(s)))
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}

func (d *decoder) count() int {
	var n uint32
	d.get(&n)
	if d.err == nil && n > maxCacheElements {
		d.err = fmt.Errorf("length %d out of range", n)
	}
	if d.err != nil {
		return 0
	}
	return int(n)
}

func (d *decoder) str() string {
	b := make([]byte, d.count())
	if d.err == nil {
		_, d.err = io.ReadFull(d.r, b)
	}
	return string(b)
}
