// Package render подключает шаблоны pongo2 к echo.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
)

// Renderer реализует echo.Renderer поверх набора шаблонов pongo2.
type Renderer struct {
	templateSet *pongo2.TemplateSet
	debug       bool
}

// NewRenderer - в debug шаблоны перечитываются с диска на каждый запрос.
func NewRenderer(templateDir string, debug bool) (*Renderer, error) {
	if templateDir == "" {
		return nil, fmt.Errorf("template directory is required")
	}
	if _, err := os.Stat(templateDir); err != nil {
		return nil, fmt.Errorf("template directory not found: %v", err)
	}

	abs, err := filepath.Abs(templateDir)
	if err != nil {
		return nil, err
	}

	set := pongo2.NewSet("soporte", pongo2.MustNewLocalFileSystemLoader(abs))
	set.Debug = debug
	return &Renderer{templateSet: set, debug: debug}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var ctx pongo2.Context
	switch v := data.(type) {
	case pongo2.Context:
		ctx = v
	case map[string]interface{}:
		ctx = pongo2.Context(v)
	default:
		ctx = pongo2.Context{"data": data}
	}
	ctx["request_path"] = c.Request().URL.Path

	var (
		tmpl *pongo2.Template
		err  error
	)
	if r.debug {
		tmpl, err = r.templateSet.FromFile(name)
	} else {
		tmpl, err = r.templateSet.FromCache(name)
	}
	if err != nil {
		return fmt.Errorf("шаблон %s: %w", name, err)
	}
	return tmpl.ExecuteWriter(ctx, w)
}
