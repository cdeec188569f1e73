package event

import "strings"

// Category labels inferred from keyword heuristics.
const (
	CategoryMusic   = "MÚSICA"
	CategoryTheater = "TEATRO"
	CategoryDance   = "DANZA"
	CategoryComedy  = "COMEDIA"
	CategoryOther   = "OTROS"
)

// Admission kinds inferred from the raw ingreso text.
const (
	AdmissionFree   = "LIBRE"
	AdmissionSignup = "INSCRIPCION"
	AdmissionPaid   = "COSTO"
	AdmissionOther  = "OTRO"
)

// InferCategory classifies a record from its type and name text. Checks
// run in a fixed priority order and the first match wins, which is the
// deliberate tie-break for text mentioning more than one discipline.
func InferCategory(r RawRecord) string {
	txt := foldSpanish(r.String("tipo") + " " + r.String("nombre"))
	switch {
	case containsAny(txt, "musica", "concierto", "banda", "orquesta"):
		return CategoryMusic
	case containsAny(txt, "teatro", "obra"):
		return CategoryTheater
	case containsAny(txt, "danza", "ballet"):
		return CategoryDance
	case containsAny(txt, "comedia", "stand up", "stand-up"):
		return CategoryComedy
	default:
		return CategoryOther
	}
}

// InferAdmission classifies the raw admission text. "libre" wins over a
// simultaneous price mention, so the checks run free → signup → paid.
func InferAdmission(r RawRecord) string {
	txt := foldSpanish(r.String("ingreso"))
	switch {
	case containsAny(txt, "libre", "gratuit"):
		return AdmissionFree
	case strings.Contains(txt, "inscrip"):
		return AdmissionSignup
	case containsAny(txt, "costo", "$", "bole", "entrada"):
		return AdmissionPaid
	default:
		return AdmissionOther
	}
}

func containsAny(txt string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(txt, t) {
			return true
		}
	}
	return false
}
