package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

const maxDownloadBytes = 64 << 20

var ErrTooLarge = errors.New("market: dataset exceeds download limit")

// Frame is a CSV held as strings with normalized headers.
type Frame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (f Frame) Index(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (f Frame) value(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Values lists the distinct non-empty values of a column, sorted.
func (f Frame) Values(column string) []string {
	i := f.Index(column)
	if i < 0 {
		return nil
	}
	seen := map[string]bool{}
	out := []string{}
	for _, row := range f.Rows {
		v := f.value(row, i)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Filter keeps rows whose column equals value. An empty value or an
// unknown column keeps everything.
func (f Frame) Filter(column, value string) Frame {
	i := f.Index(column)
	if i < 0 || value == "" {
		return f
	}
	out := Frame{Columns: f.Columns, Rows: make([][]string, 0, len(f.Rows))}
	for _, row := range f.Rows {
		if f.value(row, i) == value {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func ParseCSV(r io.Reader) (Frame, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Frame{}, fmt.Errorf("read header: %w", err)
	}
	f := Frame{Columns: make([]string, len(header))}
	for i, h := range header {
		f.Columns[i] = NormalizeHeader(h)
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Frame{}, fmt.Errorf("read row %d: %w", len(f.Rows)+2, err)
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

// Loader downloads catalog datasets through the shared cache.
type Loader struct {
	client   *http.Client
	cache    *cache.Cache
	maxBytes int64
}

func NewLoader(timeout time.Duration, c *cache.Cache) *Loader {
	return &Loader{client: &http.Client{Timeout: timeout}, cache: c, maxBytes: maxDownloadBytes}
}

func (l *Loader) Load(ctx context.Context, ds Dataset) (Frame, error) {
	if l.cache == nil {
		return l.download(ctx, ds.URL)
	}
	return cache.Fetch(ctx, l.cache, "market:"+ds.Key, func(ctx context.Context) (Frame, error) {
		return l.download(ctx, ds.URL)
	})
}

func (l *Loader) download(ctx context.Context, url string) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Frame{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Frame{}, fmt.Errorf("download dataset: status %d", resp.StatusCode)
	}
	return ParseCSV(&sizeGuard{r: resp.Body, max: l.maxBytes})
}

// sizeGuard fails the read once more than max bytes arrive, so a truncated
// body never parses as a shorter dataset.
type sizeGuard struct {
	r   io.Reader
	n   int64
	max int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	if int64(len(p)) > g.max-g.n+1 {
		p = p[:g.max-g.n+1]
	}
	n, err := g.r.Read(p)
	g.n += int64(n)
	if g.n > g.max {
		return 0, fmt.Errorf("%w (%d bytes)", ErrTooLarge, g.max)
	}
	return n, err
}

type Summary struct {
	Dataset   string         `json:"dataset"`
	Total     int            `json:"total"`
	Dimension string         `json:"dimension"`
	Distinct  int            `json:"distinct"`
	Mode      string         `json:"mode"`
	Top       []report.Group `json:"top"`
	Notice    string         `json:"notice,omitempty"`
	// Columns is filled when the dimension is missing, to show what arrived.
	Columns []string `json:"columns,omitempty"`
}

const TopN = 15

func Summarize(ds Dataset, f Frame) Summary {
	s := Summary{
		Dataset:   ds.Key,
		Total:     len(f.Rows),
		Dimension: ds.Dimension,
		Mode:      report.NotAvailable,
		Top:       []report.Group{},
	}

	i := f.Index(ds.Dimension)
	if i < 0 {
		s.Notice = fmt.Sprintf("No se encontró la columna %q; la estructura del archivo puede haber cambiado.", ds.Dimension)
		s.Columns = f.Columns
		return s
	}

	counts := map[string]int{}
	var values []string
	for _, row := range f.Rows {
		v := f.value(row, i)
		if v == "" {
			continue
		}
		counts[v]++
		values = append(values, v)
	}
	s.Distinct = len(counts)
	s.Mode = report.Mode(values)

	for label, n := range counts {
		s.Top = append(s.Top, report.Group{Label: label, Value: float64(n)})
	}
	sort.Slice(s.Top, func(a, b int) bool {
		if s.Top[a].Value != s.Top[b].Value {
			return s.Top[a].Value > s.Top[b].Value
		}
		return s.Top[a].Label < s.Top[b].Label
	})
	s.Top = report.Top(s.Top, TopN)
	return s
}
