package plano

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAnalysis_Sample(t *testing.T) {
	analysis := ExtractAnalysis(sampleLines())

	assert.Equal(t, "Taxa de mortes violentas intencionais por 100 mil habitantes", analysis.IndicadorGeral)
	assert.Equal(t, "Reduzir em 10% a taxa de MVI", analysis.MetaGeral)
	assert.Equal(t, "Valor de Referência: 12,5 (2023) Fonte: SSP", analysis.ValorReferencia)

	require.Len(t, analysis.Sections, 2)
	assert.Equal(t, Section{
		Numero:             1,
		MetaTexto:          "1 - Ampliar o monitoramento eletrônico",
		DescricaoIndicador: "Número de câmeras instaladas",
		Formula:            "total de câmeras",
		MetaPESP:           "Ampliar a cobertura",
		MetaPNSP:           "Reduzir mortes",
		CarteiraMJSP:       "Segurança Pública",
	}, analysis.Sections[0])
	assert.Equal(t, Section{
		Numero:    2,
		MetaTexto: "2 - Capacitar profissionais",
	}, analysis.Sections[1])
}

func TestExtractAnalysis_Empty(t *testing.T) {
	analysis := ExtractAnalysis([]string{"nada relevante"})
	assert.Equal(t, Analysis{}, analysis)
}

func TestTrimMetaPESP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Reduzir crimes Fonte/Ano: SSP 2023", "Reduzir crimes"},
		{"Reduzir crimes Valor de Referência/Fonte: 10", "Reduzir crimes"},
		{"Reduzir crimes", "Reduzir crimes"},
		{"—", ""},
		{"Periodicidade: anual", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, trimMetaPESP(tt.in))
		})
	}
}
