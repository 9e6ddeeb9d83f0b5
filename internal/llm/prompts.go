package llm

import (
	"context"
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a financial analyst.
const SystemPrompt = "Eres un analista financiero experto con amplia experiencia en interpretación de informes trimestrales y anuales de empresas. Tu análisis es preciso, objetivo y se centra en métricas clave. Siempre destacas tendencias importantes y conclusiones accionables."

const summaryTemplate = `Resume el siguiente informe financiero de forma estructurada.

Incluye:
1. **Resumen Ejecutivo** (2-3 líneas)
2. **Métricas Clave** (ingresos, beneficios, márgenes, etc.)
3. **Tendencias Principales** (cambios significativos)
4. **Riesgos u Observaciones** (si los hay)
5. **Conclusión** (1-2 líneas)

INFORME:
%s`

const comparisonTemplate = `Compara estos dos informes financieros y destaca las diferencias clave.

DOCUMENTO 1:
%s

DOCUMENTO 2:
%s`

// Connectivity check prompts.
const (
	pingSystemPrompt = "Eres un asistente financiero experto."
	pingUserPrompt   = "Di 'Conexión exitosa' si me entiendes."
	pingMaxTokens    = 100
)

// SummaryMessages builds the conversation asking for a structured summary of text.
func SummaryMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(summaryTemplate, text)},
	}
}

// ComparisonMessages builds the conversation comparing two reports.
func ComparisonMessages(first, second string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf(comparisonTemplate, first, second)},
	}
}

// Ping sends the fixed connectivity prompt and returns the model's reply.
func Ping(ctx context.Context, c ChatClient) (string, error) {
	reply, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: pingSystemPrompt},
		{Role: RoleUser, Content: pingUserPrompt},
	}, WithMaxTokens(pingMaxTokens))
	if err != nil {
		return "", fmt.Errorf("connectivity check failed: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
