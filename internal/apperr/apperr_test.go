package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("Archivo no encontrado: %s", "a.pdf"), http.StatusNotFound},
		{"invalid input", InvalidInput("El archivo no es un PDF: %s", "a.csv"), http.StatusBadRequest},
		{"unsupported format", UnsupportedFormat("Formato no soportado"), http.StatusBadRequest},
		{"empty content", EmptyContent("El PDF no contiene texto extraíble"), http.StatusBadRequest},
		{"storage", Storage("Error al guardar el archivo", errors.New("disk full")), http.StatusInternalServerError},
		{"processing", Processing("Error al procesar el PDF", errors.New("bad xref")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("summarize: %w", NotFound("missing")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestInvalidInputFamily(t *testing.T) {
	assert.True(t, errors.Is(EmptyContent("x"), ErrInvalidInput))
	assert.True(t, errors.Is(UnsupportedFormat("x"), ErrInvalidInput))
	assert.True(t, errors.Is(EmptyContent("x"), ErrEmptyContent))
	assert.False(t, errors.Is(NotFound("x"), ErrInvalidInput))
	assert.False(t, errors.Is(Storage("x", nil), ErrInvalidInput))
}

func TestMessageKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Storage("Error al guardar el archivo", cause)

	assert.Equal(t, "Error al guardar el archivo: permission denied", Message(err))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Equal(t, "internal server error", Message(errors.New("secret detail")))
}
