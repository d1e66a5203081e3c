package adapter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/salesops/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeTLSConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("MissingCA", func(t *testing.T) {
		_, err := adapter.MakeTLSConfig(
			filepath.Join(dir, "absent.pem"), "cert.pem", "key.pem",
		)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("InvalidCA", func(t *testing.T) {
		ca := filepath.Join(dir, "ca.pem")
		require.NoError(t, os.WriteFile(ca, []byte("not a certificate"), 0o600))

		_, err := adapter.MakeTLSConfig(ca, "cert.pem", "key.pem")
		assert.ErrorIs(t, err, adapter.ErrInvalidCA)
	})
}
