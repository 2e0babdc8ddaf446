package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
)

const productsEndpoint = "/productos"

// HTTPBackend reads each entity from a JSON endpoint that returns an array
// of flat objects. Endpoints are tried in order; 404 moves on to the next.
type HTTPBackend struct {
	baseURL string
	mapping *schema.Mapping
	client  *http.Client
}

func NewHTTPBackend(baseURL string, mapping *schema.Mapping, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		mapping: mapping,
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Name() string       { return "http" }
func (b *HTTPBackend) Descriptor() string { return "http:" + b.baseURL }

func (b *HTTPBackend) Fetch(ctx context.Context, entity models.Entity) (RawTable, error) {
	var lastErr error
	for _, endpoint := range b.mapping.Endpoints(entity) {
		objects, err := b.getJSON(ctx, endpoint)
		if errors.Is(err, ErrNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return RawTable{}, fmt.Errorf("%s: %w", entity, err)
		}
		header, rows := flatten(objects)
		return RawTable{
			Entity: entity,
			Source: b.baseURL + endpoint,
			Header: header,
			Rows:   rows,
		}, nil
	}
	return RawTable{}, fmt.Errorf("%s: %w", entity, lastErr)
}

func (b *HTTPBackend) FetchProducts(ctx context.Context) ([]map[string]string, error) {
	objects, err := b.getJSON(ctx, productsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	header, rows := flatten(objects)
	return RawTable{Header: header, Rows: rows}.Records(), nil
}

// Ping reports whether one endpoint answers with a decodable payload.
func (b *HTTPBackend) Ping(ctx context.Context, endpoint string) (int, error) {
	objects, err := b.getJSON(ctx, endpoint)
	return len(objects), err
}

func (b *HTTPBackend) getJSON(ctx context.Context, endpoint string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("GET %s: decode: %w", endpoint, err)
	}
	return objectsOf(payload)
}

// objectsOf accepts a bare array or an envelope such as {"data": [...]}.
func objectsOf(payload any) ([]map[string]any, error) {
	switch v := payload.(type) {
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d is not an object", i)
			}
			out = append(out, obj)
		}
		return out, nil
	case map[string]any:
		for _, key := range []string{"data", "items", "results"} {
			if inner, ok := v[key]; ok {
				return objectsOf(inner)
			}
		}
	}
	return nil, fmt.Errorf("payload is not a list of objects")
}

// flatten builds a sorted header over the union of keys.
func flatten(objects []map[string]any) ([]string, [][]string) {
	seen := map[string]bool{}
	var header []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	rows := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = stringify(obj[k])
		}
		rows = append(rows, row)
	}
	return header, rows
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
