package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ImageSource is an ordered set of frame images, such as the walk cycle of a
// sprite. Files named by number sort numerically (2.png before 10.png).
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
					paths = append(paths, filepath.Join(path, entry.Name()))
				}
			}
		}
		sort.Slice(paths, func(i, j int) bool {
			return frameLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
		})
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no frame images in %s", path)
	}
	return &ImageSource{paths: paths}, nil
}

// frameLess orders numeric names by value and everything else by name
func frameLess(a, b string) bool {
	na, errA := strconv.Atoi(strings.TrimSuffix(a, filepath.Ext(a)))
	nb, errB := strconv.Atoi(strings.TrimSuffix(b, filepath.Ext(b)))
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func (s *ImageSource) Count() int {
	return len(s.paths)
}

func (s *ImageSource) Paths() []string {
	return append([]string(nil), s.paths...)
}

func (s *ImageSource) Dimensions(index int) (float64, float64, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return float64(img.Width), float64(img.Height), nil
}

func (s *ImageSource) Load(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return img, nil
}

// LoadAll decodes every frame. Any failure fails the whole set, since a walk
// cycle with a missing frame is not usable.
func (s *ImageSource) LoadAll() ([]image.Image, error) {
	frames := make([]image.Image, 0, len(s.paths))
	for i := range s.paths {
		img, err := s.Load(i)
		if err != nil {
			return nil, err
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// Aspect returns width / height of the first frame
func (s *ImageSource) Aspect() (float64, error) {
	w, h, err := s.Dimensions(0)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, fmt.Errorf("frame %s has zero height", s.paths[0])
	}
	return w / h, nil
}
