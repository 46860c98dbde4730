package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "a.dat", want: "a.dat"},
		{name: "nested", input: "board/123.dat", want: "board/123.dat"},
		{name: "leading slash", input: "/board/123.dat", want: "board/123.dat"},
		{name: "dot segments", input: "./board//123.dat", want: "board/123.dat"},
		{name: "empty", input: "", wantErr: true},
		{name: "root only", input: "/", wantErr: true},
		{name: "parent escape", input: "../etc/passwd", wantErr: true},
		{name: "inner parent", input: "board/../../secret", wantErr: true},
		{name: "nul byte", input: "a\x00.dat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanName(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("board/1.dat"))
	assert.Equal(t, "text/plain; charset=utf-8", contentTypeFor("BOARD/1.DAT"))
	assert.Contains(t, contentTypeFor("index.html"), "text/html")
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob.unknownext"))
}

func TestReadStatus(t *testing.T) {
	assert.Equal(t, "success", readStatus(nil))
	assert.Equal(t, "not_found", readStatus(ErrNotFound))
	assert.Equal(t, "not_found", readStatus(ErrInvalidName))
	assert.Equal(t, "error", readStatus(assert.AnError))
}
