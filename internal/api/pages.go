package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/simmerapp/simmer-server/internal/filter"
	"github.com/simmerapp/simmer-server/internal/http/response"
	"github.com/simmerapp/simmer-server/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageRenderer holds one template set per page. Each set is the shared layout
// plus the page's own "content" block.
type pageRenderer struct {
	appName string
	pages   map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"minutes": func(n int) string {
		if n <= 0 {
			return "-"
		}
		if n < 60 {
			return fmt.Sprintf("%d min", n)
		}
		if n%60 == 0 {
			return fmt.Sprintf("%d h", n/60)
		}
		return fmt.Sprintf("%d h %d min", n/60, n%60)
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"timeLabel": func(m filter.MaxTime) string {
		if m == filter.TimeAny {
			return "Any time"
		}
		return fmt.Sprintf("Under %d min", int(m))
	},
	"hasTag": func(ids []string, id string) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}

func newPageRenderer(appName string) *pageRenderer {
	layout := template.Must(template.New("layout.html").Funcs(templateFuncs).
		ParseFS(templateFS, "templates/layout.html", "templates/partials.html"))

	files, err := fs.Glob(templateFS, "templates/page_*.html")
	if err != nil {
		panic(err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(path.Base(file), "page_"), ".html")
		pages[name] = template.Must(template.Must(layout.Clone()).ParseFS(templateFS, file))
	}

	return &pageRenderer{appName: appName, pages: pages}
}

// pageData is the root value every template executes against.
type pageData struct {
	AppName string
	Title   string
	Viewer  *service.ProfileView
	Path    string
	Notice  string
	Content any
}

// render executes a page into a buffer so a template failure never leaves
// a half-written response.
func (p *pageRenderer) render(w http.ResponseWriter, status int, name string, data pageData, logger *slog.Logger) {
	t, ok := p.pages[name]
	if !ok {
		logger.Error("unknown page template", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.AppName = p.appName

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logger.Error("render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// errorPage is the content of the error template.
type errorPage struct {
	Status  int
	Heading string
	Message string
	Code    string
}

// renderError renders the error page for err with the status the JSON API would use.
func (p *pageRenderer) renderError(w http.ResponseWriter, r *http.Request, viewer *service.ProfileView, err error, logger *slog.Logger) {
	status, env := response.Describe(err)
	if status >= http.StatusInternalServerError {
		logger.Error("page request failed", "path", r.URL.Path, "error", err)
	}

	p.render(w, status, "error", pageData{
		Title:  http.StatusText(status),
		Viewer: viewer,
		Path:   r.URL.Path,
		Content: errorPage{
			Status:  status,
			Heading: http.StatusText(status),
			Message: env.Error,
			Code:    env.Code,
		},
	}, logger)
}
