package configs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedConfigsAreValidJSON(t *testing.T) {
	for _, env := range []string{"development", "testing"} {
		data, err := Get(env)
		require.NoError(t, err)
		assert.True(t, json.Valid(data), env)
	}
	_, err := Get("production")
	assert.Error(t, err)
}
