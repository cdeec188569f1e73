package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

const idartesHTML = `
<html><body>
  <div class="cajashomeeventos">
    <div class="ctg-ev-24 position-absolute bg-white">Concierto</div>
    <a hreflang="es" href="/es/agenda/filarmonica-al-parque">Filarmónica al parque 2025</a>
    <div class="fecha-ev24">10 al 12 de noviembre</div>
    <div class="tipo_cajashomeeventos font2">Entrada libre</div>
  </div>
  <div class="cajashomeeventos">
    <a hreflang="es" href="https://www.idartes.gov.co/es/agenda/obra-sin-titulo"></a>
    <div class="fecha-ev24">5 de diciembre - 7:30 p.m.</div>
  </div>
</body></html>`

func TestIdartesParse(t *testing.T) {
	recs := (&Idartes{}).parse(docFrom(t, idartesHTML))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	first := recs[0]
	if first.String("tipo") != "Concierto" {
		t.Errorf("tipo = %q", first.String("tipo"))
	}
	if got := first.String("nombre"); got != "Filarmónica al parque" {
		t.Errorf("nombre = %q (digits must be stripped)", got)
	}
	if !first.Has("fecha_inicio") || !first.Has("fecha_fin") {
		t.Errorf("dates missing: %v", first)
	}
	if first.String("ingreso") != "LIBRE" {
		t.Errorf("ingreso = %q", first.String("ingreso"))
	}
	if got := first.String("url"); !strings.HasPrefix(got, "https://www.idartes.gov.co/") {
		t.Errorf("url = %q", got)
	}

	second := recs[1]
	if got := second.String("nombre"); got != "Obra Sin Titulo" {
		t.Errorf("slug-derived nombre = %q", got)
	}
	if second.String("hora") != "7:30 p.m." {
		t.Errorf("hora = %q", second.String("hora"))
	}
	if second.String("tipo") != "N/A" {
		t.Errorf("tipo = %q, want sentinel", second.String("tipo"))
	}
}

const pabloTobonHTML = `
<html><body>
  <div class="event-box">
    <span class="price">Desde $60.000</span>
    <div class="event-description">
      <h3>Concierto</h3>
      <a href="/evento/noche-de-boleros">Noche de boleros</a>
      <span class="day">15</span><span class="month">marzo</span>
    </div>
  </div>
</body></html>`

func TestPabloTobonParse(t *testing.T) {
	recs := (&PabloTobon{}).parse(docFrom(t, pabloTobonHTML))
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.String("nombre") != "Noche de boleros" {
		t.Errorf("nombre = %q", rec.String("nombre"))
	}
	if rec.String("fecha") != "15 marzo" {
		t.Errorf("fecha = %q", rec.String("fecha"))
	}
	if rec.String("ingreso") != "Desde $60.000" {
		t.Errorf("ingreso = %q", rec.String("ingreso"))
	}
}

const plazaHTML = `
<html><body>
  <h2 class="elementor-heading-title">Stand-up en vivo</h2>
  <h2 class="elementor-heading-title">Tango y milonga</h2>
  <span style="vertical-align: inherit;">21 de junio</span>
  <span style="vertical-align: inherit;">5 de julio</span>
  <span style="vertical-align: inherit;">huérfano</span>
</body></html>`

func TestPlazaParseZipsShortestList(t *testing.T) {
	recs := (&Plaza{}).parse(docFrom(t, plazaHTML))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].String("nombre") != "Stand-up en vivo" || recs[0].String("fecha") != "21 de junio" {
		t.Errorf("first = %v", recs[0])
	}
	if recs[1].String("fecha") != "5 de julio" {
		t.Errorf("second = %v", recs[1])
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Filarmónica al parque 2025", "Filarmónica al parque"},
		{"  Obra   sin   ruido ", "Obra sin ruido"},
		{"", "N/A"},
	}
	for _, tt := range tests {
		if got := cleanName(tt.in); got != tt.want {
			t.Errorf("cleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/es/agenda/obra-sin-titulo", "Obra Sin Titulo"},
		{"https://example.com/eventos/noche-de-boleros/", "Noche De Boleros"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleFromSlug(tt.in); got != tt.want {
			t.Errorf("titleFromSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
