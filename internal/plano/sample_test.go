package plano

// sampleLines mirrors the line layout of a real "Plano de Aplicação" export
func sampleLines() []string {
	return []string{
		"Plano de Aplicação",
		"SP - EVM - 2024 - Fundo a Fundo",
		"Indicador Geral de Resultado",
		"Taxa de mortes violentas intencionais",
		"por 100 mil habitantes",
		"Meta Geral",
		"Reduzir em 10% a taxa de MVI",
		"Justificativa",
		"Texto de justificativa",
		"Valor de Referência: 12,5 (2023)",
		"Fonte: SSP",
		"META ESPECÍFICA 1",
		"1 - Ampliar o monitoramento eletrônico",
		"Descrição do Indicador: Número de câmeras instaladas",
		"Fórmula: total de câmeras",
		"Meta do PESP: Ampliar a cobertura Periodicidade: anual",
		"Meta do PNSP: Reduzir mortes",
		"Carteira de Políticas do MJSP: Segurança Pública",
		"Status: Aprovado",
		"Itens da Meta",
		"Item 1 Planejado",
		"Ação: Aquisição de equipamentos",
		"Art. 7º (2): Enfrentamento à violência",
		"Bem/Serviço: Computador",
		"Descrição: Computador desktop",
		"completo com monitor",
		"Destinação: Delegacias",
		"Unidade de Medida: un",
		"Qtd. Planejada: 2",
		"Natureza (ND): 449052",
		"Instituição: Polícia Civil",
		"Cód. Senasp: 123",
		"Valor Originário Planejado: R$ 1.000,00",
		"Valor Total: R$ 2.000,00",
		"Item 2 Aprovado",
		"Bem/Serviço: Viatura",
		"Unidade de Medida: -",
		"Quantidade Planejada: 1",
		"Valor Total: R$ 150.000,00",
		"META ESPECÍFICA 2",
		"2 - Capacitar profissionais",
		"Meta do PESP: -",
		"Itens da Meta",
		"Item 1 Cancelado",
		"Material/Serviço: Curso",
		"Instituição: Academia",
		"Valor Total: 5000",
	}
}
