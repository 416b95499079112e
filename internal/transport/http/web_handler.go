package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"csvdesk/internal/config"
	"csvdesk/internal/dataprocessing"
	"csvdesk/internal/files"
	"csvdesk/internal/infrastructure"
	"csvdesk/internal/mail"
	"csvdesk/internal/services"
	"csvdesk/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

// formFile is the multipart field name the upload form posts.
const formFile = "file"

// WebHandler serves the browser UI: upload, preview, filter, download,
// deletion simulation and the summary email form.
type WebHandler struct {
	cfg      *config.Config
	csv      *services.CSVService
	uploads  *files.Manager
	sessions *session.Store
	metrics  *infrastructure.Metrics
	validate *validator.Validate
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewWebHandler creates the browser-facing handler.
func NewWebHandler(
	cfg *config.Config,
	csv *services.CSVService,
	uploads *files.Manager,
	sessions *session.Store,
	metrics *infrastructure.Metrics,
	logger *slog.Logger,
) (*WebHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &WebHandler{
		cfg:      cfg,
		csv:      csv,
		uploads:  uploads,
		sessions: sessions,
		metrics:  metrics,
		validate: validator.New(),
		tmpl:     tmpl,
		logger:   logger.With(slog.String("handler", "web")),
	}, nil
}

// pageData is everything the page template can render.
type pageData struct {
	Title          string
	Flashes        []session.Flash
	Filename       string
	Headers        []string
	Rows           [][]string
	TotalRows      int
	Truncated      bool
	RowsLabel      string
	FilterDate     string
	FilterCategory string
	DateColumn     string
	CategoryColumn string
	MailConfigured bool
}

func (h *WebHandler) newPageData(w http.ResponseWriter, r *http.Request) pageData {
	return pageData{
		Title:          config.AppName,
		Flashes:        h.sessions.Flashes(w, r),
		DateColumn:     h.cfg.Columns.Date,
		CategoryColumn: h.cfg.Columns.Category,
		MailConfigured: h.cfg.Mail.Configured(),
	}
}

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("error", err.Error()))
	}
}

// fillTable copies a table preview into the page data, capping at the
// preview row limit.
func (h *WebHandler) fillTable(data *pageData, t *dataprocessing.Table, label string) {
	preview := h.csv.Preview(t)
	data.Headers = t.Headers()
	data.Rows = preview.Rows()
	data.TotalRows = t.Len()
	data.Truncated = t.Len() > preview.Len()
	data.RowsLabel = label
}

// loadSessionTable resolves the session's upload and loads it. On any
// failure it flashes, clears the stale reference and redirects to the
// upload page; the caller must return when ok is false.
func (h *WebHandler) loadSessionTable(w http.ResponseWriter, r *http.Request) (*dataprocessing.Table, session.UploadReference, bool) {
	ref, ok := h.sessions.Upload(r)
	if !ok {
		h.sessions.Flash(w, r, session.LevelInfo, "Upload a CSV file to get started.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, ref, false
	}
	if !h.uploads.Exists(ref.Path) {
		h.logger.WarnContext(r.Context(), "stored upload vanished",
			slog.String("path", ref.Path))
		_ = h.sessions.ClearUpload(w, r)
		h.sessions.Flash(w, r, session.LevelDanger, "The uploaded file is no longer available. Please upload it again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, ref, false
	}

	t, err := h.csv.Load(ref.Path)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read stored upload",
			slog.String("path", ref.Path),
			slog.String("error", err.Error()))
		_ = h.sessions.ClearUpload(w, r)
		h.sessions.Flash(w, r, session.LevelDanger, fmt.Sprintf("Could not read %s. Please upload it again.", ref.Filename))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, ref, false
	}
	return t, ref, true
}

// Index handles GET /.
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(w, r)
	if ref, ok := h.sessions.Upload(r); ok {
		data.Filename = ref.Filename
	}
	h.render(w, r, data)
}

// Upload handles POST /upload.
func (h *WebHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(formFile)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.sessions.Flash(w, r, session.LevelDanger,
				fmt.Sprintf("The uploaded file exceeds the %s size limit.", sizeLimitLabel(maxErr.Limit)))
		} else {
			h.sessions.Flash(w, r, session.LevelDanger, "No file selected.")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	name, path, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrEmptyFilename):
			h.sessions.Flash(w, r, session.LevelDanger, "No file selected.")
		case errors.Is(err, files.ErrExtensionNotAllowed):
			h.sessions.Flash(w, r, session.LevelDanger, "Only CSV files are allowed.")
		default:
			h.logger.ErrorContext(r.Context(), "failed to store upload",
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			h.sessions.Flash(w, r, session.LevelDanger, "Could not store the uploaded file.")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.sessions.SetUpload(w, r, session.UploadReference{Filename: name, Path: path}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save session",
			slog.String("error", err.Error()))
		h.sessions.Flash(w, r, session.LevelDanger, "Could not start a session for the upload.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.metrics.UploadsTotal.Inc()
	h.sessions.Flash(w, r, session.LevelSuccess, fmt.Sprintf("%s uploaded successfully.", name))
	http.Redirect(w, r, "/display", http.StatusSeeOther)
}

// sizeLimitLabel renders a byte cap for the upload-too-large message.
func sizeLimitLabel(limit int64) string {
	const mb = 1 << 20
	if limit >= mb {
		return fmt.Sprintf("%d MB", limit/mb)
	}
	return fmt.Sprintf("%d bytes", limit)
}

// Display handles GET /display.
func (h *WebHandler) Display(w http.ResponseWriter, r *http.Request) {
	t, ref, ok := h.loadSessionTable(w, r)
	if !ok {
		return
	}

	data := h.newPageData(w, r)
	data.Filename = ref.Filename
	h.fillTable(&data, t, "all rows")
	h.render(w, r, data)
}

// Filter handles POST /filter. The optional action field switches between
// previewing the filtered rows, downloading them, and simulating deletion.
func (h *WebHandler) Filter(w http.ResponseWriter, r *http.Request) {
	t, ref, ok := h.loadSessionTable(w, r)
	if !ok {
		return
	}

	spec := dataprocessing.FilterSpec{
		Date:     r.FormValue("filter_date"),
		Category: r.FormValue("filter_category"),
	}
	action := r.FormValue("action")
	if action == "" {
		action = "preview"
	}
	if err := h.validate.Var(action, "oneof=preview download delete"); err != nil {
		h.sessions.Flash(w, r, session.LevelDanger, "Unknown action.")
		http.Redirect(w, r, "/display", http.StatusSeeOther)
		return
	}
	h.metrics.FilterActions.WithLabelValues(action).Inc()

	result := h.csv.Filter(t, spec)
	for _, warning := range result.Warnings {
		h.sessions.Flash(w, r, session.LevelWarning, warning)
	}
	if result.BadInput != nil {
		h.sessions.Flash(w, r, session.LevelDanger, result.BadInput.Error())
	}
	if len(result.Applied) > 0 {
		h.sessions.Flash(w, r, session.LevelSuccess, "Filters applied: "+strings.Join(result.Applied, ", "))
	}

	switch action {
	case "download":
		if result.Count() == 0 {
			h.sessions.Flash(w, r, session.LevelInfo, "No rows matched the filters; nothing to download.")
			http.Redirect(w, r, "/display", http.StatusSeeOther)
			return
		}
		h.download(w, r, result.Table, ref.Filename)
		return
	case "delete":
		remaining := h.csv.SimulateDelete(t, result)
		deleted := t.Len() - remaining.Len()
		h.sessions.Flash(w, r, session.LevelInfo,
			fmt.Sprintf("Simulated deletion of %d row(s). The stored file is unchanged.", deleted))

		data := h.newPageData(w, r)
		data.Filename = ref.Filename
		data.FilterDate = spec.Date
		data.FilterCategory = spec.Category
		h.fillTable(&data, remaining, "remaining rows")
		h.render(w, r, data)
		return
	}

	data := h.newPageData(w, r)
	data.Filename = ref.Filename
	data.FilterDate = spec.Date
	data.FilterCategory = spec.Category
	h.fillTable(&data, result.Table, "matching rows")
	h.render(w, r, data)
}

// download streams a table as a CSV attachment.
func (h *WebHandler) download(w http.ResponseWriter, r *http.Request, t *dataprocessing.Table, sourceFilename string) {
	data, name, err := h.csv.ExportCSV(t, sourceFilename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode download",
			slog.String("error", err.Error()))
		h.sessions.Flash(w, r, session.LevelDanger, "Could not prepare the download.")
		http.Redirect(w, r, "/display", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write download",
			slog.String("error", err.Error()))
	}
}

// Email handles POST /email.
func (h *WebHandler) Email(w http.ResponseWriter, r *http.Request) {
	t, ref, ok := h.loadSessionTable(w, r)
	if !ok {
		return
	}

	recipient := r.FormValue("recipient_email")
	if err := h.validate.Var(recipient, "required,email"); err != nil {
		h.sessions.Flash(w, r, session.LevelDanger, "Please enter a valid email address.")
		http.Redirect(w, r, "/display", http.StatusSeeOther)
		return
	}

	err := h.csv.EmailSummary(r.Context(), recipient, t, ref.Filename)
	switch {
	case err == nil:
		h.sessions.Flash(w, r, session.LevelSuccess, fmt.Sprintf("Summary sent to %s.", recipient))
	case errors.Is(err, mail.ErrUnconfigured):
		h.sessions.Flash(w, r, session.LevelWarning, "Email is not configured on this server.")
	case errors.Is(err, mail.ErrAuthFailed):
		h.sessions.Flash(w, r, session.LevelDanger, "The mail server rejected the configured credentials.")
	case errors.Is(err, mail.ErrDisconnected):
		h.sessions.Flash(w, r, session.LevelDanger, "The mail server closed the connection before the summary was sent.")
	default:
		h.logger.ErrorContext(r.Context(), "summary email failed",
			slog.String("recipient", recipient),
			slog.String("error", err.Error()))
		h.sessions.Flash(w, r, session.LevelDanger, "The summary email could not be sent.")
	}
	http.Redirect(w, r, "/display", http.StatusSeeOther)
}
