package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"phone-sales-dashboard/metrics"
	"phone-sales-dashboard/models"
	"phone-sales-dashboard/services"
	"phone-sales-dashboard/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":       currentUser(r),
		"report_url": s.Config.ReportURL(),
	})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	report, err := s.Reports.Report(r.Context(), models.ParseFilter(r.URL.Query()))
	if err != nil {
		s.Logger.Error("[web] Build report: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.Reports.Insights(r.Context())
	if err != nil {
		s.Logger.Error("[web] Generate insights: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to generate insights")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"insights": insights})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.Config.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		respondError(w, http.StatusBadRequest, "upload too large or not multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		respondError(w, http.StatusBadRequest, "only .csv files are accepted")
		return
	}

	raw, err := storage.ReadSales(file)
	if errors.Is(err, storage.ErrMissingColumns) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not parse CSV: "+err.Error())
		return
	}

	res, err := s.Importer.Import(r.Context(), raw)
	if errors.Is(err, services.ErrNoRows) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.Logger.Error("[web] Import %s: %v", header.Filename, err)
		respondError(w, http.StatusInternalServerError, "import failed")
		return
	}

	s.Logger.Info("[web] %s uploaded %s (%d rows)", currentUser(r).Email, header.Filename, res.Rows)
	respondJSON(w, http.StatusOK, res)
}

var exportTypes = map[string]string{
	"csv":  "text/csv",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	contentType, ok := exportTypes[format]
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported export format: "+format)
		return
	}
	if format == "pdf" && s.PDF == nil {
		respondError(w, http.StatusNotImplemented, "pdf export is not configured")
		return
	}

	rows, err := s.Exports.FetchExportRows(r.Context(), models.ParseFilter(r.URL.Query()))
	if err != nil {
		s.Logger.Error("[web] Fetch export rows: %v", err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	var body bytes.Buffer
	switch format {
	case "csv":
		var cw *storage.CSVWriter
		cw, err = storage.NewCSVWriter(&body, storage.ExportHeader)
		if err == nil {
			err = cw.WriteExport(rows)
		}
	case "xlsx":
		err = storage.WriteXLSX(&body, rows)
	case "pdf":
		var pdf []byte
		pdf, err = s.PDF.Render(r.Context(), storage.ExportHeader, rows)
		body.Write(pdf)
	}
	if err != nil {
		s.Logger.Error("[web] Encode %s export: %v", format, err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	metrics.Exports.WithLabelValues(format).Inc()
	filename := fmt.Sprintf("sales_export_%s.%s", time.Now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}
