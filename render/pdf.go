package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

const (
	// MaxPDFRows caps the PDF table. Larger exports should use CSV or XLSX.
	MaxPDFRows = 100
	pdfTitle   = "Mobile Sales Export"
)

var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 9px; margin: 24px; }
h1 { font-size: 16px; margin: 0 0 4px; }
p.meta { color: #666; margin: 0 0 12px; }
table { border-collapse: collapse; width: 100%; }
th { background: #2c3e50; color: #fff; text-align: left; }
th, td { border: 1px solid #ccc; padding: 3px 5px; }
tr:nth-child(even) td { background: #f4f6f8; }
td.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.GeneratedAt}} &middot; showing {{.Shown}} of {{.Total}} rows</p>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Brand}}</td><td>{{.Model}}</td><td>{{.RAM}}</td><td>{{.Storage}}</td><td>{{.Camera}}</td><td>{{.Battery}}</td><td>{{.Processor}}</td><td class="num">{{.Price}}</td><td class="num">{{.UnitsSold}}</td><td>{{.Region}}</td><td>{{.Channel}}</td><td>{{.Year}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type htmlRow struct {
	models.ExportRow
	Price     string
	UnitsSold string
}

// WriteHTML renders the first MaxPDFRows rows as a standalone HTML table.
func WriteHTML(w io.Writer, header []string, rows []models.ExportRow, generatedAt time.Time) error {
	shown := rows
	if len(shown) > MaxPDFRows {
		shown = shown[:MaxPDFRows]
	}

	p := message.NewPrinter(language.English)
	out := make([]htmlRow, len(shown))
	for i, r := range shown {
		out[i] = htmlRow{
			ExportRow: r,
			Price:     p.Sprintf("%.2f", r.Price),
			UnitsSold: p.Sprintf("%d", r.UnitsSold),
		}
	}

	return exportTemplate.Execute(w, map[string]any{
		"Title":       pdfTitle,
		"GeneratedAt": generatedAt.Format("2006-01-02 15:04"),
		"Shown":       len(shown),
		"Total":       len(rows),
		"Header":      header,
		"Rows":        out,
	})
}

// PDFRenderer prints export tables through a headless Chrome instance.
type PDFRenderer struct {
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewPDFRenderer creates a renderer. An empty chromeBin triggers a lookup
// of the usual Chrome and Chromium install locations.
func NewPDFRenderer(chromeBin string, maxAttempts int, logger *utils.Logger) *PDFRenderer {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &PDFRenderer{
		chromeBin: chromeBin,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxAttempts,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Render returns a landscape A4 PDF of the export table.
func (r *PDFRenderer) Render(ctx context.Context, header []string, rows []models.ExportRow) ([]byte, error) {
	var doc bytes.Buffer
	if err := WriteHTML(&doc, header, rows, time.Now()); err != nil {
		return nil, fmt.Errorf("pdf: render html: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if r.chromeBin != "" {
		r.logger.Debug("[pdf] Using browser binary: %s", r.chromeBin)
		opts = append(opts, chromedp.ExecPath(r.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var pdf []byte
	err := r.retry.Do(ctx, "print-pdf", func() error {
		// Suppress chromedp log noise
		tabCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				tree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(tree.Frame.ID, doc.String()).Do(ctx)
			}),
			chromedp.ActionFunc(func(ctx context.Context) error {
				buf, _, err := page.PrintToPDF().
					WithLandscape(true).
					WithPrintBackground(true).
					WithPaperWidth(11.69).
					WithPaperHeight(8.27).
					Do(ctx)
				if err != nil {
					return err
				}
				pdf = buf
				return nil
			}),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("pdf: print: %w", err)
	}

	r.logger.Info("[pdf] Rendered %d rows (%d bytes)", min(len(rows), MaxPDFRows), len(pdf))
	return pdf, nil
}

func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
