// Package server provides the HTTP upload/preview/download shell around the
// reconciliation pipeline.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/lookup"
	"nycunits/internal/models"
	"nycunits/internal/pipeline"
	"nycunits/internal/sheet"
)

// maxUploadBytes caps the in-memory part of a multipart upload.
const maxUploadBytes = 32 << 20

// previewRows is how many result rows the upload response echoes back.
const previewRows = 5

// Server wires the HTTP handlers to the pipeline.
type Server struct {
	cfg    *config.Config
	logger *logger.Logger
}

// New creates a server for the given configuration.
func New(cfg *config.Config, log *logger.Logger) *Server {
	return &Server{cfg: cfg, logger: log}
}

// Routes returns the handler mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/download/", s.handleDownload)

	return mux
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>NYC Unit Lookup</title></head>
<body>
<h1>NYC Unit Lookup</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
  <p><input type="file" name="file" accept=".xlsx,.xls" required></p>
  <p>BBL column (blank = auto): <input type="text" name="column"></p>
  <p>Strategy:
    <select name="strategy">
      <option value="">(configured default)</option>
      <option value="pluto">pluto</option>
      <option value="portal">portal</option>
      <option value="resilient">resilient</option>
    </select>
  </p>
  <p><button type="submit">Get Units</button></p>
</form>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST method allowed", http.StatusMethodNotAllowed)

		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)

		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	defer file.Close()

	table, err := sheet.Read(file)
	if err != nil {
		// The one hard failure: an unreadable input table.
		http.Error(w, "failed to read spreadsheet: "+err.Error(), http.StatusBadRequest)

		return
	}

	keyColumn := strings.TrimSpace(r.FormValue("column"))
	if keyColumn == "" {
		keyColumn = table.Columns[table.DetectKeyColumn()]
	}

	cfg := *s.cfg
	if strategy := r.FormValue("strategy"); strategy != "" {
		cfg.Lookup.Strategy = strategy
		if err := cfg.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	client, err := lookup.New(&cfg, s.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	s.logger.Info("upload received", "file", hdr.Filename, "rows", len(table.Rows), "column", keyColumn, "strategy", cfg.Lookup.Strategy)

	rec := pipeline.NewReconciler(client, cfg.Lookup.ChunkSize, s.logger)

	records, err := rec.Reconcile(r.Context(), table, keyColumn, func(fraction float64) {
		s.logger.Debug("lookup progress", "fraction", fraction)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	out := pipeline.OutputTable(table, records, cfg.Lookup.UnitColumn)

	if err := os.MkdirAll(cfg.Server.DownloadDir, 0755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	outPath := filepath.Join(cfg.Server.DownloadDir, cfg.Output.Filename)
	if err := sheet.WriteFile(outPath, out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	s.logger.Info("result workbook written", "path", outPath, "rows", len(out.Rows))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Processed %d rows.\n", len(out.Rows))
	fmt.Fprintf(w, "Download: /download/%s\n\n", cfg.Output.Filename)
	writePreview(w, out)
}

// writePreview prints the header and the first few result rows.
func writePreview(w http.ResponseWriter, table *models.Table) {
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))

	n := min(previewRows, len(table.Rows))
	for _, row := range table.Rows[:n] {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if name != s.cfg.Output.Filename {
		http.NotFound(w, r)

		return
	}

	path := filepath.Join(s.cfg.Server.DownloadDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("Content-Type", sheet.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
