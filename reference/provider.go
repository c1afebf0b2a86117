package reference

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	// register decoders for reference images exported as bmp or tiff
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageProvider supplies the source image of a reference pose by name
type ImageProvider interface {
	LoadImage(name string) (image.Image, error)
}

// DefaultExtensions are tried in order when resolving a name in a directory
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tiff"}

// DirProvider loads reference images from a directory, a name resolves to
// the first <dir>/<name><ext> that exists
type DirProvider struct {
	Dir        string
	Extensions []string
}

// NewDirProvider returns a DirProvider for dir using DefaultExtensions
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{
		Dir:        dir,
		Extensions: DefaultExtensions,
	}
}

// LoadImage finds and decodes the image for name
func (p *DirProvider) LoadImage(name string) (image.Image, error) {

	path, err := p.resolve(name)

	if err != nil {
		return nil, err
	}

	img, err := decodeFile(path)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, name, err)
	}

	return img, nil
}

// resolve returns the file holding the image for name
func (p *DirProvider) resolve(name string) (string, error) {

	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid name %q", ErrImageNotFound, name)
	}

	for _, ext := range p.Extensions {
		path := filepath.Join(p.Dir, name+ext)

		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s in %s", ErrImageNotFound, name, p.Dir)
}

// Names lists the image names available in the directory
func (p *DirProvider) Names() ([]string, error) {

	entries, err := os.ReadDir(p.Dir)

	if err != nil {
		return nil, fmt.Errorf("list reference images: %w", err)
	}

	seen := make(map[string]bool)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(e.Name()))

		for _, want := range p.Extensions {
			if ext == want {
				seen[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
				break
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	return names, nil
}

// decodeFile opens an image with imaging's registered decoders honoring EXIF
// orientation, falling back to the webp decoder
func decodeFile(path string) (image.Image, error) {

	img, err := imaging.Open(path, imaging.AutoOrientation(true))

	if err == nil {
		return img, nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		return nil, err
	}

	f, ferr := os.Open(path)

	if ferr != nil {
		return nil, ferr
	}
	defer f.Close()

	return webp.Decode(f)
}

// MapProvider serves images held in memory, safe for concurrent use
type MapProvider struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewMapProvider returns a MapProvider holding images
func NewMapProvider(images map[string]image.Image) *MapProvider {
	m := &MapProvider{images: make(map[string]image.Image, len(images))}

	for k, v := range images {
		m.images[k] = v
	}

	return m
}

// Set adds or replaces the image for name
func (m *MapProvider) Set(name string, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[name] = img
}

// LoadImage returns the image for name
func (m *MapProvider) LoadImage(name string) (image.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	img, ok := m.images[name]

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}

	return img, nil
}
