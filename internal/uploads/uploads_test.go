package uploads

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formFiles builds a multipart form with the given field -> (filename -> content) files.
func formFiles(t *testing.T, field string, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"My cool movie.mov":          "My_cool_movie.mov",
		"../../../etc/passwd":        "etc_passwd",
		"i contain cool ümläuts.txt": "i_contain_cool_umlauts.txt",
		"résumé final.pdf":           "resume_final.pdf",
		"C:\\Users\\x\\rep.zip":      "C_Users_x_rep.zip",
		"...":                        "",
		"__init__.py":                "init__.py",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), in)
	}
}

func TestSaveKeepsContentAndAvoidsCollisions(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	first := formFiles(t, "project_file", map[string][]byte{"report final.zip": []byte("one")})[0]
	second := formFiles(t, "project_file", map[string][]byte{"report final.zip": []byte("two")})[0]

	p1, err := d.Save(first)
	require.NoError(t, err)
	p2, err := d.Save(second)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.True(t, strings.HasPrefix(p1, URLPrefix))
	assert.True(t, strings.HasSuffix(p1, "_report_final.zip"))

	for path, want := range map[string]string{p1: "one", p2: "two"} {
		full, err := d.Resolve(path)
		require.NoError(t, err)
		got, err := os.ReadFile(full)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
		assert.True(t, d.Exists(path))
	}
}

func TestSavePhotoResizesLargeImages(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	fh := formFiles(t, "photos", map[string][]byte{"wide.png": pngBytes(t, 2400, 100)})[0]
	p, err := d.SavePhoto(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "_wide.jpg"), p)

	full, err := d.Resolve(p)
	require.NoError(t, err)
	f, err := os.Open(full)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, MaxPhotoWidth, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestSavePhotoFallsBackForOtherFormats(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	fh := formFiles(t, "photos", map[string][]byte{"anim.gif": []byte("GIF89a")})[0]
	p, err := d.SavePhoto(fh)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "_anim.gif"))

	broken := formFiles(t, "photos", map[string][]byte{"broken.jpg": []byte("not a jpeg")})[0]
	p, err = d.SavePhoto(broken)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "_broken.jpg"))
	assert.True(t, d.Exists(p))
}

func TestSaveAllSkipsEmptyEntries(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	files := formFiles(t, "videos", map[string][]byte{"a.mp4": []byte("a"), "b.mp4": []byte("b")})
	files = append(files, &multipart.FileHeader{})
	paths, err := d.SaveAll(files, false)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestResolveRejectsTraversal(t *testing.T) {
	d := &Dir{Root: t.TempDir()}
	for _, bad := range []string{"", "uploads/", "uploads/../secret", "uploads/a/b.txt", "uploads/.."} {
		_, err := d.Resolve(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
	assert.False(t, d.Exists("uploads/missing.zip"))
}

func TestRemoveDeletesStoredFiles(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	paths, err := d.SaveAll(formFiles(t, "videos", map[string][]byte{"a.mp4": []byte("a"), "b.mp4": []byte("b")}), false)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	outside := filepath.Join(filepath.Dir(d.Root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	d.Remove(append(paths, "", "uploads/missing.bin", "uploads/../keep.txt")...)
	for _, p := range paths {
		assert.False(t, d.Exists(p), p)
	}
	assert.FileExists(t, outside)
}
