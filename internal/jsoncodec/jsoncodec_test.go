package jsoncodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalPayload(t *testing.T) {
	in := map[string]interface{}{
		"title": "Shoes",
		"contentMetadata": map[string]interface{}{
			"price": "10.5",
		},
	}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEncodeDecode(t *testing.T) {
	type body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, body{Code: "handle_not_found", Message: "no content reference for ident ab-12"}))

	var decoded body
	require.NoError(t, Decode(buf, &decoded))
	assert.Equal(t, "handle_not_found", decoded.Code)
	assert.Equal(t, "no content reference for ident ab-12", decoded.Message)
}
