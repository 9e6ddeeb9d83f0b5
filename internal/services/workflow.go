package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/financialdocumentflow/internal/gcp"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/googleapis/gax-go/v2"
)

// ExecutionCreator is the part of the Workflows executions client the
// trigger needs.
type ExecutionCreator interface {
	CreateExecution(ctx context.Context, req *executionspb.CreateExecutionRequest, opts ...gax.CallOption) (*executionspb.Execution, error)
}

// WorkflowTrigger starts one Cloud Workflows execution per stored PDF.
type WorkflowTrigger struct {
	client   ExecutionCreator
	workflow string
}

func NewWorkflowTrigger(client ExecutionCreator, projectID, location, workflowID string) *WorkflowTrigger {
	return &WorkflowTrigger{client: client, workflow: gcp.WorkflowName(projectID, location, workflowID)}
}

func (w *WorkflowTrigger) Trigger(ctx context.Context, doc *models.StoredDocument) error {
	logCtx := slog.With("docId", doc.DocID, "workflow", w.workflow)
	logCtx.Info("Triggering workflow.")

	payloadBytes, err := json.Marshal(map[string]any{
		"documentId": doc.DocID,
		"filename":   doc.StoredFilename,
		"path":       doc.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: w.workflow,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := w.client.CreateExecution(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	logCtx.Info("Workflow execution created.", "execution", exec.GetName())
	return nil
}
