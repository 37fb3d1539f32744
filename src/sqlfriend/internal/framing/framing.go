// Package framing splits a language server's byte stream into message bodies using
// the base protocol's Content-Length header.
package framing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
)

const (
	_headerContentLength = "Content-Length"
	_headerSeparator     = "\r\n"
)

// Encode prefixes body with its Content-Length header block.
func Encode(body []byte) []byte {
	header := fmt.Sprintf("%s: %d%s%s", _headerContentLength, len(body), _headerSeparator, _headerSeparator)
	out := make([]byte, 0, len(header)+len(body))
	out = append(out, header...)
	return append(out, body...)
}

// ReadBody reads one header block and exactly the number of body bytes it announces.
// A stream that ends before any header byte yields a FramingError wrapping io.EOF.
func ReadBody(r *bufio.Reader) ([]byte, error) {
	length := -1
	first := true
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && first && line == "" {
				return nil, &errors.FramingError{Reason: "end of stream", Err: io.EOF}
			}
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, &errors.FramingError{Reason: "reading header", Err: err}
		}
		first = false

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &errors.FramingError{Reason: fmt.Sprintf("malformed header line %q", line)}
		}
		if !strings.EqualFold(strings.TrimSpace(key), _headerContentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, &errors.FramingError{Reason: fmt.Sprintf("invalid content-length %q", strings.TrimSpace(value)), Err: err}
		}
		length = n
	}

	if length < 0 {
		return nil, &errors.FramingError{Reason: "missing content-length"}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &errors.FramingError{Reason: "short body", Err: err}
	}
	return body, nil
}
