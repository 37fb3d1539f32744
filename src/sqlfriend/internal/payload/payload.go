// Package payload builds the JSON-RPC messages sent to a language server.
package payload

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

const (
	// LanguageID is the language identifier of every opened document.
	LanguageID protocol.LanguageIdentifier = "sql"
	// ClientName is reported to servers in the initialize request.
	ClientName = "sqlfriend"
)

// Payload is a serialized message ready for framing.
type Payload struct {
	// ID is set for requests only.
	ID     jsonrpc2.ID
	Method string
	Data   []byte
}

// IsRequest reports whether a response is expected for the payload.
func (p Payload) IsRequest() bool {
	return p.ID != jsonrpc2.ID{}
}

// NewID returns a fresh request id derived from a random UUIDv4.
func NewID() jsonrpc2.ID {
	return jsonrpc2.NewStringID(uuid.Must(uuid.NewV4()).String())
}

// Initialize builds the initialize request. options may be nil.
func Initialize(options interface{}) (Payload, error) {
	params := &protocol.InitializeParams{
		ProcessID:             int32(os.Getpid()),
		ClientInfo:            &protocol.ClientInfo{Name: ClientName},
		InitializationOptions: options,
		Capabilities:          protocol.ClientCapabilities{},
	}
	return request(protocol.MethodInitialize, params)
}

// Initialized builds the initialized notification.
func Initialized() (Payload, error) {
	return notification(protocol.MethodInitialized, &protocol.InitializedParams{})
}

// DidOpen builds a didOpen notification for a sql document at version 1.
func DidOpen(docURI uri.URI, text string) (Payload, error) {
	return notification(protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        docURI,
			LanguageID: LanguageID,
			Version:    1,
			Text:       text,
		},
	})
}

// DidChange builds a didChange notification carrying the full new text.
func DidChange(docURI uri.URI, version int32, text string) (Payload, error) {
	return notification(protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: text},
		},
	})
}

// Completion builds a completion request at a zero-indexed line and column.
func Completion(docURI uri.URI, line, col uint32) (Payload, error) {
	return request(protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
			Position:     protocol.Position{Line: line, Character: col},
		},
	})
}

func request(method string, params interface{}) (Payload, error) {
	id := NewID()
	call, err := jsonrpc2.NewCall(id, method, params)
	if err != nil {
		return Payload{}, fmt.Errorf("building %s request: %w", method, err)
	}
	data, err := json.Marshal(call)
	if err != nil {
		return Payload{}, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return Payload{ID: id, Method: method, Data: data}, nil
}

func notification(method string, params interface{}) (Payload, error) {
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return Payload{}, fmt.Errorf("building %s notification: %w", method, err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return Payload{}, fmt.Errorf("encoding %s notification: %w", method, err)
	}
	return Payload{Method: method, Data: data}, nil
}
