package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"taskboard/internal/logger"

	"go.uber.org/zap"
)

//go:embed static
var embedded embed.FS

const (
	indexFile    = "index.html"
	notFoundFile = "404.html"
)

type handler struct {
	fsys  fs.FS
	files http.Handler
}

// Handler отдаёт клиент из staticDir, если такой каталог существует,
// иначе из встроенных в бинарник файлов. Неизвестные пути получают
// index.html, а при его отсутствии страницу 404.
func Handler(staticDir string) http.Handler {
	fsys := Assets(staticDir)
	return &handler{
		fsys:  fsys,
		files: http.FileServer(http.FS(fsys)),
	}
}

// Assets выбирает источник статики
func Assets(staticDir string) fs.FS {
	if staticDir != "" {
		info, err := os.Stat(staticDir)
		if err == nil && info.IsDir() {
			logger.Info("Web: Статика из каталога", zap.String("dir", staticDir))
			return os.DirFS(staticDir)
		}
		logger.Warn("Web: Каталог статики не найден, используются встроенные файлы",
			zap.String("dir", staticDir))
	}
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		// встроенный каталог есть всегда, сюда не попадаем
		panic(err)
	}
	return sub
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexFile
	}

	if isFile(h.fsys, name) {
		h.files.ServeHTTP(w, r)
		return
	}
	if isFile(h.fsys, indexFile) {
		http.ServeFileFS(w, r, h.fsys, indexFile)
		return
	}
	h.notFound(w)
}

func (h *handler) notFound(w http.ResponseWriter) {
	page, err := fs.ReadFile(h.fsys, notFoundFile)
	if err != nil {
		page, _ = embedded.ReadFile("static/" + notFoundFile)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(page)
}

func isFile(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}
