package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/wonseok/quarters/internal/estimates"
	"github.com/wonseok/quarters/pkg/logger"
)

// Requests per second against the estimate pages. Kept conservative; the
// pages are static HTML.
const webRequestsPerSecond = 2

var fiscalPeriodRe = regexp.MustCompile(`^(\d{4})Q([1-4])$`)

// WebClient scrapes analyst-estimate revision tables from HTML pages.
// Implements estimates.Source.
// ⭐ SSOT: 웹 추정치 수집은 이 클라이언트에서만
type WebClient struct {
	baseURL    string
	symbols    []string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewWebClient creates a scraper for the given symbols.
func NewWebClient(baseURL string, symbols []string, log *logger.Logger) *WebClient {
	return &WebClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		symbols:    symbols,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(webRequestsPerSecond), webRequestsPerSecond),
		logger:     log,
	}
}

// Fetch scrapes every configured symbol's estimate table.
func (c *WebClient) Fetch(ctx context.Context) ([]estimates.RawReport, error) {
	var all []estimates.RawReport
	for _, symbol := range c.symbols {
		reports, err := c.FetchSymbol(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("fetch estimates for %s: %w", symbol, err)
		}
		all = append(all, reports...)
	}
	return all, nil
}

// FetchSymbol scrapes one symbol's estimate revision table.
func (c *WebClient) FetchSymbol(ctx context.Context, symbol string) ([]estimates.RawReport, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/estimates?symbol=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	reports, err := c.parseEstimateHTML(resp.Body, symbol)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(reports),
	}).Debug("Fetched estimate revisions")
	return reports, nil
}

// parseEstimateHTML parses an estimate revision table. Expected row shape:
// published date, fiscal period (e.g. 2015Q1), expected release date,
// estimate value.
func (c *WebClient) parseEstimateHTML(body io.Reader, symbol string) ([]estimates.RawReport, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := doc.Find("table.estimates")
	if table.Length() == 0 {
		return nil, fmt.Errorf("no estimate table found")
	}

	var reports []estimates.RawReport
	var rowErr error

	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		if rowErr != nil {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		knowledge, err := parseTimestamp(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			rowErr = fmt.Errorf("row %d published date: %w", i, err)
			return
		}

		period := strings.TrimSpace(cells.Eq(1).Text())
		m := fiscalPeriodRe.FindStringSubmatch(period)
		if m == nil {
			rowErr = fmt.Errorf("row %d: malformed fiscal period %q", i, period)
			return
		}
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])

		eventDate, err := parseTimestamp(strings.TrimSpace(cells.Eq(2).Text()))
		if err != nil {
			rowErr = fmt.Errorf("row %d release date: %w", i, err)
			return
		}

		estimateText := strings.ReplaceAll(strings.TrimSpace(cells.Eq(3).Text()), ",", "")
		estimate, err := strconv.ParseFloat(estimateText, 64)
		if err != nil {
			rowErr = fmt.Errorf("row %d estimate: %w", i, err)
			return
		}

		reports = append(reports, estimates.RawReport{
			EntityID:      symbol,
			KnowledgeTime: knowledge,
			EventDate:     eventDate,
			FiscalYear:    year,
			FiscalQuarter: quarter,
			Values:        map[string]float64{"estimate": estimate},
		})
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return reports, nil
}
