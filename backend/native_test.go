package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/accelbridge/errors"
)

func TestDecodeFreed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want uint64
	}{
		{"positive", `{"freed_bytes": 4096}`, 4096},
		{"zero", `{"freed_bytes": 0}`, 0},
		{"negative clamps to zero", `{"freed_bytes": -128}`, 0},
		{"missing field", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFreed(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFreedMalformed(t *testing.T) {
	_, err := decodeFreed(json.RawMessage(`not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestWireResponseEnvelope(t *testing.T) {
	var resp wireResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status":"ok","result":{"heap_used":1}}`), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Result)

	resp = wireResponse{}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"error","message":"device lost"}`), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "device lost", resp.Message)
	assert.Empty(t, resp.Result)
}
