package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

const (
	pabloTobonURL = "https://www.teatropablotobon.com/programacion"
	pageStep      = 12
	maxPages      = 10
)

// PabloTobon scrapes the Medellín Teatro Pablo Tobón program, following
// the offset-based pagination until a page comes back empty.
type PabloTobon struct {
	client *http.Client
}

func (s *PabloTobon) Name() string { return "pablotobon" }

func (s *PabloTobon) Scrape(ctx context.Context) ([]event.RawRecord, error) {
	var records []event.RawRecord

	for page := 0; page < maxPages; page++ {
		url := pabloTobonURL
		if page > 0 {
			url = fmt.Sprintf("%s?start=%d", pabloTobonURL, page*pageStep)
		}
		doc, err := fetchDocument(ctx, s.client, url)
		if err != nil {
			return nil, err
		}

		pageRecords := s.parse(doc)
		if len(pageRecords) == 0 {
			break
		}
		records = append(records, pageRecords...)
	}

	return records, nil
}

func (s *PabloTobon) parse(doc *goquery.Document) []event.RawRecord {
	var records []event.RawRecord

	doc.Find("div.event-description").Each(func(_ int, cont *goquery.Selection) {
		tipo := textOr(cont.Find("h3"), event.NotAvailable)

		nombre := event.NotAvailable
		if anchor := cont.Find("a").First(); anchor.Length() > 0 {
			nombre = strings.TrimSpace(anchor.Text())
			if nombre == "" {
				if href, _ := anchor.Attr("href"); href != "" {
					nombre = titleFromSlug(href)
				}
			}
		}

		fecha := event.NotAvailable
		day := cont.Find(".day").First()
		month := cont.Find(".month").First()
		if day.Length() > 0 && month.Length() > 0 {
			fecha = strings.TrimSpace(day.Text()) + " " + strings.TrimSpace(month.Text())
		}

		ingreso := textOr(cont.Parent().Find("span.price"), event.NotAvailable)

		records = append(records, event.RawRecord{
			"tipo":    tipo,
			"nombre":  nombre,
			"fecha":   fecha,
			"ingreso": ingreso,
		})
	})

	return records
}
