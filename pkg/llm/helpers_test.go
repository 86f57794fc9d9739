package llm

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTools() []Tool {
	return []Tool{{
		Name:        "list_pods",
		Description: "List pods",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"namespace": {Type: "string"},
			},
		},
	}}
}

// fakeBackend is a scripted Backend.
type fakeBackend struct {
	resp      *Response
	err       error
	callCount int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Invoke(ctx context.Context, req Request) (*Response, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}
