package reportfmt

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"typesizes/internal/report"
)

// HTMLIndex is the page written by WriteHTML.
const HTMLIndex = "index.html"

//go:embed assets/index.html.tmpl assets/static
var assets embed.FS

var htmlTemplate = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"split": func(name string) []report.NameToken {
		return report.SplitName(name).Tokens
	},
	"level": func(lvl int) string {
		if lvl < 0 {
			return "bad"
		}
		return fmt.Sprint(lvl % len(levelColors))
	},
	"deref": func(p *int) int { return *p },
	"slug":  func(s string) string { return strings.ReplaceAll(s, " ", "-") },
}).ParseFS(assets, "assets/index.html.tmpl"))

// Static returns the stylesheet and script the page links to.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}

// RenderHTML writes the page for r.
func RenderHTML(w io.Writer, r Report) error {
	return htmlTemplate.Execute(w, r)
}

// WriteHTML renders r into dir/index.html and copies the static assets next
// to it. It returns the path of the page.
func WriteHTML(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(dir, HTMLIndex)
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := RenderHTML(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to render %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	static := Static()
	err = fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, path), data, 0o644)
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy static files: %w", err)
	}
	return out, nil
}
