package scraper

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

const plazaURL = "https://teatroastorplaza.com"

// Plaza scrapes the Cali Teatro Astor Plaza landing page, where names and
// dates live in parallel element lists that are zipped positionally.
type Plaza struct {
	client *http.Client
}

func (s *Plaza) Name() string { return "plaza" }

func (s *Plaza) Scrape(ctx context.Context) ([]event.RawRecord, error) {
	doc, err := fetchDocument(ctx, s.client, plazaURL)
	if err != nil {
		return nil, err
	}
	return s.parse(doc), nil
}

func (s *Plaza) parse(doc *goquery.Document) []event.RawRecord {
	names := doc.Find("h2.elementor-heading-title")
	dates := doc.Find(`span[style="vertical-align: inherit;"]`)

	n := names.Length()
	if dates.Length() < n {
		n = dates.Length()
	}

	records := make([]event.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, event.RawRecord{
			"nombre": strings.TrimSpace(names.Eq(i).Text()),
			"fecha":  strings.TrimSpace(dates.Eq(i).Text()),
		})
	}
	return records
}
