package simpleshare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-share/pkg/simpleshare"
)

func TestParseStaleHandle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    simpleshare.HandleID
		wantOK  bool
	}{
		{name: "canonical message", message: "no content reference for ident 1a2b-3c4d", want: "1a2b-3c4d", wantOK: true},
		{name: "uuid", message: "no content reference for ident 0f8fad5b-d9cb-469f-a165-70867728950e", want: "0f8fad5b-d9cb-469f-a165-70867728950e", wantOK: true},
		{name: "colon separator", message: "ident: ABCDEF", want: "ABCDEF", wantOK: true},
		{name: "quoted", message: "stale ident = 'deadbeef' dropped", want: "deadbeef", wantOK: true},
		{name: "trailing hyphen", message: "ident 12-34-", want: "12-34", wantOK: true},
		{name: "first match wins", message: "ident aa then ident bb", want: "aa", wantOK: true},
		{name: "longer word is not the literal", message: "identifier 1234", wantOK: false},
		{name: "hex prefix of a word", message: "ident deadbeefzz", wantOK: false},
		{name: "no token", message: "handle missing", wantOK: false},
		{name: "literal only", message: "ident", wantOK: false},
		{name: "empty", message: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := simpleshare.ParseStaleHandle(tt.message)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandleNotFoundError_RoundTrip(t *testing.T) {
	err := simpleshare.NewHandleNotFoundError("c0ffee-01")

	assert.True(t, simpleshare.IsHandleNotFound(err))
	assert.Equal(t, "handle_not_found: no content reference for ident c0ffee-01", err.Error())

	got, ok := simpleshare.ParseStaleHandle(err.Message)
	assert.True(t, ok)
	assert.Equal(t, simpleshare.HandleID("c0ffee-01"), got)
}
