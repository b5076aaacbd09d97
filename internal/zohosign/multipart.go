package zohosign

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// formBuilder assembles a multipart/form-data body in memory.
type formBuilder struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newFormBuilder() *formBuilder {
	b := &formBuilder{}
	b.w = multipart.NewWriter(&b.buf)
	return b
}

func (b *formBuilder) field(name, value string) *formBuilder {
	if b.err != nil {
		return b
	}
	b.err = b.w.WriteField(name, value)
	return b
}

func (b *formBuilder) file(name string, doc Document) *formBuilder {
	if b.err != nil {
		return b
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(doc.Filename)))
	h.Set("Content-Type", doc.ContentType)

	part, err := b.w.CreatePart(h)
	if err != nil {
		b.err = err
		return b
	}
	_, b.err = part.Write(doc.Content)
	return b
}

// finish closes the writer and returns the body with its content type.
func (b *formBuilder) finish() (*bytes.Buffer, string, error) {
	if b.err != nil {
		return nil, "", b.err
	}
	if err := b.w.Close(); err != nil {
		return nil, "", err
	}
	return &b.buf, b.w.FormDataContentType(), nil
}
