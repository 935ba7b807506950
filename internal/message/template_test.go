package message

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		v    Values
		want string
	}{
		{
			name: "all tokens",
			tmpl: "{nome}, você ganhou {premio}! Válido por {validade} dias. Contato {whatsapp}",
			v:    Values{Prize: "10% OFF", ValidityDays: 30, Name: "Ana", WhatsApp: "5531999999999"},
			want: "Ana, você ganhou 10% OFF! Válido por 30 dias. Contato 5531999999999",
		},
		{
			name: "every occurrence",
			tmpl: "{premio} {premio} {premio}",
			v:    Values{Prize: "X"},
			want: "X X X",
		},
		{
			name: "missing values use defaults",
			tmpl: "[{premio}] [{validade}] [{nome}] [{whatsapp}]",
			v:    Values{},
			want: "[Prêmio] [10] [] []",
		},
		{
			name: "unknown tokens stay",
			tmpl: "{premio} {desconto}",
			v:    Values{Prize: "Trufa"},
			want: "Trufa {desconto}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.tmpl, tt.v); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidityDays(t *testing.T) {
	tests := map[string]int{
		"Validade dos prêmios: 30 dias": 30,
		"válido por 7 dias, até 2026":   7,
		"":                              DefaultValidityDays,
		"sem prazo":                     DefaultValidityDays,
		"0 dias":                        DefaultValidityDays,
	}
	for in, want := range tests {
		if got := ValidityDays(in); got != want {
			t.Errorf("ValidityDays(%q) = %d, want %d", in, got, want)
		}
	}
	if got := ValidityDays(Callout(45)); got != 45 {
		t.Errorf("ValidityDays(Callout(45)) = %d", got)
	}
}

func TestTemplateOrDefault(t *testing.T) {
	if got := TemplateOrDefault("  "); got != DefaultTemplate {
		t.Errorf("Expected default template, got %q", got)
	}
	if got := TemplateOrDefault("oi {nome}"); got != "oi {nome}" {
		t.Errorf("Expected template to be kept, got %q", got)
	}
}
