package handlers

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Rakesh-6305/project-store/internal/payment"
)

// TemplateCache holds parsed page templates. Files whose name starts with "_"
// are partials and are parsed into every page.
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"rupees":   payment.FormatAmount,
			"mediaURL": mediaURL,
			"dict":     dict,
		},
	}
}

// mediaURL maps a stored "uploads/<name>" path to its public URL.
func mediaURL(dbPath string) string {
	return "/static/" + strings.TrimPrefix(dbPath, "/")
}

// dict builds a map from alternating keys and values, for passing several values to a partial.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// Load parses all templates in dir
func (tc *TemplateCache) Load(dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return err
	}

	var partials, pages []string
	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "_") {
			partials = append(partials, file)
		} else {
			pages = append(pages, file)
		}
	}

	for _, file := range pages {
		name := filepath.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFiles(append([]string{file}, partials...)...)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Execute renders a cached page; unknown names are reported as errTemplateNotFound.
func (tc *TemplateCache) Execute(w io.Writer, name string, data any) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return errTemplateNotFound
	}
	return tmpl.Execute(w, data)
}
