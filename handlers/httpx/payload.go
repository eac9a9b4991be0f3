package httpx

import (
	"bytes"
	"drawshare/core"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	InvalidInputMessage = "Invalid inputs passed, please check your data."
	ImageField          = "image"
)

// Payload is a request body read either from JSON or from a multipart form.
type Payload struct {
	fields map[string]string
	Image  *core.Image
}

// Get returns the named field, or "" when absent.
func (p *Payload) Get(name string) string {
	return p.fields[name]
}

// Lookup reports whether the field was sent at all.
func (p *Payload) Lookup(name string) (string, bool) {
	v, ok := p.fields[name]
	return v, ok
}

// Optional returns a pointer to the field value, or nil when absent.
func (p *Payload) Optional(name string) *string {
	v, ok := p.fields[name]
	if !ok {
		return nil
	}
	return &v
}

// ReadPayload reads a JSON object or a multipart form of at most maxBytes.
// JSON string values are unquoted; other JSON values are kept as raw text.
// The multipart file field "image" becomes Payload.Image.
func ReadPayload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Payload, error) {
	p := &Payload{fields: map[string]string{}}
	if r.Body == nil || r.Body == http.NoBody {
		return p, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return p, readMultipart(r, p, maxBytes)
	default:
		return p, readJSON(r, p)
	}
}

func invalidInput(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return core.WrapError(core.ErrValidation, "The uploaded data is too large.", err)
	}
	return core.WrapError(core.ErrValidation, InvalidInputMessage, err)
}

func readJSON(r *http.Request, p *Payload) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return invalidInput(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return invalidInput(err)
	}
	for name, value := range raw {
		trimmed := bytes.TrimSpace(value)
		switch {
		case bytes.Equal(trimmed, []byte("null")):
			continue
		case len(trimmed) > 0 && trimmed[0] == '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return invalidInput(err)
			}
			p.fields[name] = s
		default:
			p.fields[name] = string(trimmed)
		}
	}
	return nil
}

func readMultipart(r *http.Request, p *Payload, maxBytes int64) error {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return invalidInput(err)
	}
	for name, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			p.fields[name] = values[0]
		}
	}

	file, header, err := r.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return invalidInput(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return invalidInput(err)
	}
	p.Image = &core.Image{
		Data:        data,
		ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
		Filename:    header.Filename,
	}
	return nil
}
