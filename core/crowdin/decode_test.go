package crowdin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		kind    envelopeKind
		message string
		wantErr bool
	}{
		{name: "data object", body: `{"data":{"id":1}}`, kind: kindData},
		{name: "data page", body: `{"data":[{"data":{"id":1}},{"data":{"id":2}}],"pagination":{"offset":0,"limit":25}}`, kind: kindPage},
		{name: "empty page", body: `{"data":[],"pagination":{"offset":0,"limit":25}}`, kind: kindPage},
		{name: "error object", body: `{"error":{"code":404,"message":"File Not Found"}}`, kind: kindError, message: "File Not Found"},
		{
			name:    "errors list",
			body:    `{"errors":[{"error":{"key":"name","errors":[{"code":"isEmpty","message":"Value is required"}]}}]}`,
			kind:    kindErrors,
			message: "name: Value is required",
		},
		{name: "unknown object", body: `{"result":true}`, wantErr: true},
		{name: "scalar data", body: `{"data":42}`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := decodeEnvelope([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, env.Kind)
			assert.Equal(t, tt.message, env.Message())
		})
	}
}

func TestDecodeData_RejectsPage(t *testing.T) {
	_, err := decodeData[File]([]byte(`{"data":[{"data":{"id":1}}]}`))
	assert.ErrorContains(t, err, "expected data object, got page")

	f, err := decodeData[File]([]byte(`{"data":{"id":7,"path":"/menu.properties","revisionId":3}}`))
	require.NoError(t, err)
	assert.Equal(t, File{ID: 7, Path: "/menu.properties", RevisionID: 3}, f)
}

func TestDecodePage(t *testing.T) {
	items, err := decodePage[SourceString]([]byte(`{"data":[
		{"data":{"id":1,"fileId":7,"identifier":"title","text":"Menu"}},
		{"data":{"id":2,"fileId":7,"identifier":"items","text":{"one":"{0} item","other":"{0} items"}}}
	]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Menu", items[0].Text.Value())
	assert.Equal(t, "{0} item\n{0} items", items[1].Text.Value())

	_, err = decodePage[SourceString]([]byte(`{"data":{"id":1}}`))
	assert.Error(t, err)

	_, err = decodePage[SourceString]([]byte(`{"data":[{"data":{"text":5}}]}`))
	assert.Error(t, err)
}
