package function

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/financialdocumentflow/internal/apperr"
	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSummarizer struct {
	names []string
	err   error
}

func (r *recordingSummarizer) SummarizeAndStore(_ context.Context, filename string) (*models.SummaryResult, string, error) {
	r.names = append(r.names, filename)
	if r.err != nil {
		return nil, "", r.err
	}
	return &models.SummaryResult{Filename: filename, SummaryLength: 10}, "gs://reports/summaries/x.md", nil
}

func storageEvent(t *testing.T, bucket, name string) cloudevents.Event {
	t.Helper()
	e := cloudevents.NewEvent()
	e.SetID("1")
	e.SetSource("//storage.googleapis.com/projects/_/buckets/" + bucket)
	e.SetType("google.cloud.storage.object.v1.finalized")
	require.NoError(t, e.SetData(cloudevents.ApplicationJSON, models.GCSEvent{Bucket: bucket, Name: name}))
	return e
}

func TestHandleStorageEvent(t *testing.T) {
	tests := []struct {
		name      string
		bucket    string
		object    string
		summarize bool
	}{
		{name: "pdf is summarized", bucket: "reports", object: "aapl-20250628_q3.pdf", summarize: true},
		{name: "upper-case extension", bucket: "reports", object: "Q3.PDF", summarize: true},
		{name: "spreadsheet is skipped", bucket: "reports", object: "data.xlsx"},
		{name: "generated summary is skipped", bucket: "reports", object: "summaries/q3.md"},
		{name: "other bucket is skipped", bucket: "elsewhere", object: "q3.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSummarizer{}
			err := HandleStorageEvent(context.Background(), s, "reports", storageEvent(t, tt.bucket, tt.object))
			require.NoError(t, err)
			if tt.summarize {
				assert.Equal(t, []string{tt.object}, s.names)
			} else {
				assert.Empty(t, s.names)
			}
		})
	}
}

func TestHandleStorageEventErrors(t *testing.T) {
	ctx := context.Background()

	s := &recordingSummarizer{err: apperr.EmptyContent("El PDF no contiene texto extraíble")}
	assert.NoError(t, HandleStorageEvent(ctx, s, "", storageEvent(t, "reports", "scan.pdf")))

	s = &recordingSummarizer{err: apperr.Processing("Error al generar el resumen", errors.New("timeout"))}
	err := HandleStorageEvent(ctx, s, "", storageEvent(t, "reports", "q3.pdf"))
	assert.True(t, errors.Is(err, apperr.ErrProcessing))

	bad := cloudevents.NewEvent()
	require.NoError(t, bad.SetData(cloudevents.TextPlain, "not json"))
	assert.Error(t, HandleStorageEvent(ctx, &recordingSummarizer{}, "", bad))
}
