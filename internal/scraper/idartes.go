package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

const (
	idartesBaseURL   = "https://www.idartes.gov.co"
	idartesAgendaURL = idartesBaseURL + "/es/agenda"
)

// Idartes scrapes the Bogotá Idartes agenda. Dates come as free text and
// are normalized at harvest time, so the cached payload already carries
// fecha_inicio/fecha_fin/hora.
type Idartes struct {
	client *http.Client
}

func (s *Idartes) Name() string { return "idartes" }

func (s *Idartes) Scrape(ctx context.Context) ([]event.RawRecord, error) {
	doc, err := fetchDocument(ctx, s.client, idartesAgendaURL)
	if err != nil {
		return nil, err
	}
	return s.parse(doc), nil
}

func (s *Idartes) parse(doc *goquery.Document) []event.RawRecord {
	now := time.Now()
	var records []event.RawRecord

	doc.Find("div.cajashomeeventos").Each(func(_ int, cont *goquery.Selection) {
		tipo := textOr(cont.Find("div.ctg-ev-24.position-absolute.bg-white"), event.NotAvailable)

		nombre := event.NotAvailable
		var eventURL any
		if anchor := cont.Find(`a[hreflang="es"]`).First(); anchor.Length() > 0 {
			nombre = strings.TrimSpace(anchor.Text())
			href, _ := anchor.Attr("href")
			switch {
			case strings.HasPrefix(href, "/"):
				eventURL = idartesBaseURL + href
			case strings.HasPrefix(href, "http"):
				eventURL = href
			}
			if nombre == "" && href != "" {
				nombre = titleFromSlug(href)
			}
		}

		fechaRaw := event.NotAvailable
		if f := cont.Find("div.fecha-ev24").First(); f.Length() > 0 {
			fechaRaw = strings.Join(strings.Fields(f.Text()), " ")
		}
		ingresoRaw := textOr(cont.Find("div.tipo_cajashomeeventos.font2"), event.NotAvailable)

		span := event.NormalizeDate(fechaRaw, now)
		records = append(records, event.RawRecord{
			"tipo":         tipo,
			"nombre":       cleanName(nombre),
			"fecha_inicio": orNil(span.Start),
			"fecha_fin":    orNil(span.End),
			"hora":         orNil(span.Time),
			"ingreso":      event.InferAdmission(event.RawRecord{"ingreso": ingresoRaw}),
			"url":          eventURL,
		})
	})

	return records
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
