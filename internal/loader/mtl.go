package loader

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"RainyDay/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Material is what the scene reads from an MTL file. Reflectance terms used by
// the shading programs are set by the scene itself.
type Material struct {
	Name          string
	DiffuseColor  mgl32.Vec3
	SpecularColor mgl32.Vec3
	Shininess     float32
	Alpha         float32
	// AlbedoPath is the map_Kd texture resolved against the MTL directory.
	AlbedoPath string
}

// LoadMaterials reads an MTL file. A missing or unreadable file yields an
// empty map and an error log; models fall back to their defaults.
func LoadMaterials(path string) map[string]*Material {
	materials := make(map[string]*Material)

	f, err := os.Open(path)
	if err != nil {
		logger.Log.Error("Error opening material file", zap.String("path", path), zap.Error(err))
		return materials
	}
	defer f.Close()

	var current *Material
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				logger.Log.Warn("Malformed material line", zap.String("path", path))
				continue
			}
			current = &Material{Name: fields[1], Alpha: 1}
			materials[current.Name] = current
			continue
		}
		if current == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			current.DiffuseColor = parseColor(fields[1:])
		case "Ks":
			current.SpecularColor = parseColor(fields[1:])
		case "Ns":
			if len(fields) >= 2 {
				current.Shininess = parseFloat(fields[1])
			}
		case "d":
			if len(fields) >= 2 {
				current.Alpha = parseFloat(fields[1])
			}
		case "map_Kd":
			if len(fields) < 2 {
				continue
			}
			// options may precede the file name
			tex := fields[len(fields)-1]
			if !filepath.IsAbs(tex) {
				tex = filepath.Join(filepath.Dir(path), tex)
			}
			current.AlbedoPath = tex
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Log.Error("Error reading material file", zap.String("path", path), zap.Error(err))
	}
	return materials
}

func parseColor(fields []string) mgl32.Vec3 {
	var c mgl32.Vec3
	for i := 0; i < len(fields) && i < 3; i++ {
		c[i] = parseFloat(fields[i])
	}
	return c
}

func parseFloat(s string) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		logger.Log.Warn("Error parsing material value", zap.String("value", s), zap.Error(err))
		return 0
	}
	return float32(f)
}
