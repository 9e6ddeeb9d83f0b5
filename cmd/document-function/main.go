package main

import (
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/Lllllllleong/financialdocumentflow/internal/config"
	_ "github.com/Lllllllleong/financialdocumentflow/internal/function"
)

// main runs the registered functions locally. Set FUNCTION_TARGET to pick
// FinancialAssistantAPI or SummarizeOnUpload.
func main() {
	port := config.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework.Start failed", "error", err)
		os.Exit(1)
	}
}
