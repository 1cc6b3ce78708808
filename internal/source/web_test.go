package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wonseok/quarters/pkg/logger"
)

const estimatePage = `<html><body>
<table class="estimates">
<thead><tr><th>Published</th><th>Period</th><th>Release</th><th>EPS est.</th></tr></thead>
<tbody>
<tr><td>2015-01-01</td><td>2015Q1</td><td>2015-01-15</td><td>0.5</td></tr>
<tr><td>2015-01-06</td><td>2015Q2</td><td>2015-01-31</td><td>1,200.8</td></tr>
<tr><td colspan="4">no data</td></tr>
</tbody>
</table>
</body></html>`

func TestWebClientFetchSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "AAA" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(estimatePage))
	}))
	defer srv.Close()

	client := NewWebClient(srv.URL, []string{"AAA"}, logger.Nop())

	reports, err := client.FetchSymbol(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("FetchSymbol failed: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	first := reports[0]
	if first.EntityID != "AAA" {
		t.Errorf("entity = %s, want AAA", first.EntityID)
	}
	if first.FiscalYear != 2015 || first.FiscalQuarter != 1 {
		t.Errorf("fiscal period = %dQ%d, want 2015Q1", first.FiscalYear, first.FiscalQuarter)
	}
	if first.Values["estimate"] != 0.5 {
		t.Errorf("estimate = %f, want 0.5", first.Values["estimate"])
	}

	// Thousands separators are stripped.
	if reports[1].Values["estimate"] != 1200.8 {
		t.Errorf("estimate = %f, want 1200.8", reports[1].Values["estimate"])
	}
}

func TestWebClientFetchAllSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(estimatePage))
	}))
	defer srv.Close()

	client := NewWebClient(srv.URL, []string{"AAA", "BBB"}, logger.Nop())

	reports, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(reports) != 4 {
		t.Errorf("expected 4 reports, got %d", len(reports))
	}
	if reports[2].EntityID != "BBB" {
		t.Errorf("entity = %s, want BBB", reports[2].EntityID)
	}
}

func TestWebClientMalformedPeriod(t *testing.T) {
	page := `<html><body><table class="estimates"><tbody>
<tr><td>2015-01-01</td><td>Q1-2015</td><td>2015-01-15</td><td>0.5</td></tr>
</tbody></table></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	client := NewWebClient(srv.URL, nil, logger.Nop())

	if _, err := client.FetchSymbol(context.Background(), "AAA"); err == nil {
		t.Error("FetchSymbol should fail on a malformed fiscal period")
	}
}

func TestWebClientMissingTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
	}))
	defer srv.Close()

	client := NewWebClient(srv.URL, nil, logger.Nop())

	if _, err := client.FetchSymbol(context.Background(), "AAA"); err == nil {
		t.Error("FetchSymbol should fail when the table is absent")
	}
}

func TestWebClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewWebClient(srv.URL, nil, logger.Nop())

	if _, err := client.FetchSymbol(context.Background(), "AAA"); err == nil {
		t.Error("FetchSymbol should fail on HTTP 500")
	}
}
