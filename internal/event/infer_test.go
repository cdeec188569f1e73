package event

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
		want string
	}{
		{
			name: "concierto in type",
			raw:  RawRecord{"tipo": "Concierto", "nombre": "Filarmónica al parque"},
			want: CategoryMusic,
		},
		{
			name: "accented música in name",
			raw:  RawRecord{"nombre": "Festival de MÚSICA andina"},
			want: CategoryMusic,
		},
		{
			name: "obra classifies as theater",
			raw:  RawRecord{"tipo": "Obra", "nombre": "La casa de Bernarda Alba"},
			want: CategoryTheater,
		},
		{
			name: "theater wins over dance on a tie",
			raw:  RawRecord{"nombre": "Teatro y danza contemporánea"},
			want: CategoryTheater,
		},
		{
			name: "ballet classifies as dance",
			raw:  RawRecord{"tipo": "Ballet", "nombre": "El lago de los cisnes"},
			want: CategoryDance,
		},
		{
			name: "stand-up classifies as comedy",
			raw:  RawRecord{"nombre": "Noche de stand-up"},
			want: CategoryComedy,
		},
		{
			name: "no keyword falls back to OTROS",
			raw:  RawRecord{"tipo": "Taller", "nombre": "Fotografía urbana"},
			want: CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCategory(tt.raw); got != tt.want {
				t.Errorf("InferCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferAdmission(t *testing.T) {
	tests := []struct {
		name    string
		ingreso string
		want    string
	}{
		{"entrada libre", "Entrada libre", AdmissionFree},
		{"gratuito", "Evento gratuito", AdmissionFree},
		{"libre wins over price mention", "Entrada libre, boletas VIP $50.000", AdmissionFree},
		{"inscripcion with accent", "Inscripción previa", AdmissionSignup},
		{"con costo", "Con costo", AdmissionPaid},
		{"currency symbol", "$30.000", AdmissionPaid},
		{"boleteria", "Boletería en taquilla", AdmissionPaid},
		{"entrada alone is paid", "Entrada general", AdmissionPaid},
		{"empty", "", AdmissionOther},
		{"unrecognized", "Cupo limitado", AdmissionOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawRecord{"ingreso": tt.ingreso}
			if got := InferAdmission(raw); got != tt.want {
				t.Errorf("InferAdmission(%q) = %q, want %q", tt.ingreso, got, tt.want)
			}
		})
	}
}
