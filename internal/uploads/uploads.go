package uploads

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/text/unicode/norm"
)

// URLPrefix is the prefix stored in the database for uploaded files, relative to the static dir.
const URLPrefix = "uploads/"

// MaxPhotoWidth bounds stored photos; narrower images are kept at their size.
const MaxPhotoWidth = 1200

var ErrInvalidPath = errors.New("uploads: invalid file path")

// Dir saves uploaded files into a single shared directory.
type Dir struct {
	Root string
}

func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Dir{Root: root}, nil
}

// Sanitize reduces a browser-supplied filename to a safe ASCII basename:
// accents are folded, path separators and whitespace become underscores and
// anything outside [A-Za-z0-9_.-] is dropped. It returns "" when nothing usable remains.
func Sanitize(name string) string {
	name = norm.NFKD.String(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// uniqueName prefixes the sanitized name so equal filenames never overwrite each other.
func uniqueName(original string) string {
	clean := Sanitize(original)
	if clean == "" {
		clean = "file"
	}
	return uuid.NewString()[:8] + "_" + clean
}

// Save copies an uploaded file verbatim and returns its database path ("uploads/<name>").
func (d *Dir) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uniqueName(fh.Filename)
	dst, err := os.Create(filepath.Join(d.Root, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		d.Remove(URLPrefix + name)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return URLPrefix + name, nil
}

// SavePhoto downsizes PNG and JPEG photos to MaxPhotoWidth and stores them as JPEG.
// Other formats, and images that fail to decode, are stored verbatim.
func (d *Dir) SavePhoto(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return d.Save(fh)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var img image.Image
	if ext == ".png" {
		img, err = png.Decode(src)
	} else {
		img, err = jpeg.Decode(src)
	}
	if err != nil {
		slog.Warn("Failed to decode photo, storing original", "file", fh.Filename, "error", err)
		return d.Save(fh)
	}

	if img.Bounds().Dx() > MaxPhotoWidth {
		img = resize.Resize(MaxPhotoWidth, 0, img, resize.Lanczos3)
	}

	base := strings.TrimSuffix(uniqueName(fh.Filename), filepath.Ext(fh.Filename))
	name := base + ".jpg"
	out, err := os.Create(filepath.Join(d.Root, name))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		d.Remove(URLPrefix + name)
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return URLPrefix + name, nil
}

// SaveAll stores every non-empty file of a multi-file field, downsizing them when photos is set.
func (d *Dir) SaveAll(files []*multipart.FileHeader, photos bool) ([]string, error) {
	var paths []string
	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}
		save := d.Save
		if photos {
			save = d.SavePhoto
		}
		p, err := save(fh)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Resolve maps a stored "uploads/<name>" path to a file inside the upload directory.
func (d *Dir) Resolve(dbPath string) (string, error) {
	name := strings.TrimPrefix(dbPath, URLPrefix)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidPath
	}
	return filepath.Join(d.Root, name), nil
}

// Remove deletes stored files, skipping empty and already missing paths.
// Handlers call it to drop files saved for a request that later failed.
func (d *Dir) Remove(dbPaths ...string) {
	for _, dbPath := range dbPaths {
		if dbPath == "" {
			continue
		}
		p, err := d.Resolve(dbPath)
		if err != nil {
			slog.Warn("Refusing to remove upload", "path", dbPath, "error", err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove upload", "path", dbPath, "error", err)
		}
	}
}

// Exists reports whether the stored file is present on disk.
func (d *Dir) Exists(dbPath string) bool {
	p, err := d.Resolve(dbPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
