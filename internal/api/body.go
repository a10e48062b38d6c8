// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// Content types chosen by encodeBody.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// FormData is a multipart payload of fields and files.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	content         []byte
}

// NewFormData returns an empty multipart payload.
func NewFormData() *FormData {
	return &FormData{}
}

// Set appends a text field.
func (f *FormData) Set(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part.
func (f *FormData) AddFile(field, filename string, content []byte) *FormData {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *FormData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// encodeBody selects the wire encoding from the payload's shape. A nil
// payload sends no body but keeps the JSON content type.
func encodeBody(payload interface{}) (io.Reader, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, ContentTypeJSON, nil
	case *FormData:
		if p == nil {
			return nil, ContentTypeJSON, nil
		}
		return p.encode()
	case FormData:
		return p.encode()
	case []byte:
		return NewFormData().AddFile("file", "blob", p).encode()
	case string:
		return strings.NewReader(p), ContentTypeForm, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), ContentTypeJSON, nil
	}
}
