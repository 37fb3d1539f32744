package framing

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReadBodyRoundTrip(t *testing.T) {
	bodies := [][]byte{
		[]byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`),
		[]byte("{\"text\":\"line one\nline two\r\nline three\"}"),
		[]byte(`{"label":"ünïcödé"}`),
		{},
	}

	var stream bytes.Buffer
	for _, b := range bodies {
		stream.Write(Encode(b))
	}

	r := bufio.NewReader(&stream)
	for _, want := range bodies {
		got, err := ReadBody(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ReadBody(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantErr   string
		remaining string
	}{
		{
			name:  "case insensitive header",
			input: "content-length: 2\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:  "extra headers ignored",
			input: "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: 4\r\n\r\nnull",
			want:  "null",
		},
		{
			name:  "bare newlines",
			input: "Content-Length: 2\n\n[]",
			want:  "[]",
		},
		{
			name:      "missing content-length leaves body unread",
			input:     "Content-Type: text\r\n\r\n{\"a\":1}",
			wantErr:   "missing content-length",
			remaining: "{\"a\":1}",
		},
		{
			name:    "unparsable content-length",
			input:   "Content-Length: abc\r\n\r\n{}",
			wantErr: "invalid content-length",
		},
		{
			name:    "negative content-length",
			input:   "Content-Length: -1\r\n\r\n{}",
			wantErr: "invalid content-length",
		},
		{
			name:    "header without separator",
			input:   "Content-Length 2\r\n\r\n{}",
			wantErr: "malformed header",
		},
		{
			name:    "short body",
			input:   "Content-Length: 10\r\n\r\n{}",
			wantErr: "short body",
		},
		{
			name:    "stream ends inside header block",
			input:   "Content-Length: 2\r\n",
			wantErr: "reading header",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			got, err := ReadBody(r)
			if tt.wantErr != "" {
				require.Error(t, err)
				var fe *errors.FramingError
				assert.ErrorAs(t, err, &fe)
				assert.Contains(t, err.Error(), tt.wantErr)
				rest, _ := io.ReadAll(r)
				if tt.remaining != "" {
					assert.Equal(t, tt.remaining, string(rest))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestReadBodyTruncatedIsNotCleanEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 10\r\n\r\n{}"))
	_, err := ReadBody(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, io.EOF)
}
