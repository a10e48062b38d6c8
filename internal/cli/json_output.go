// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to stdout, highlighted when stdout is a
// color terminal.
func (r *JSONResponse) Print() error {
	return r.WriteTo(os.Stdout, ColorsEnabled())
}

// WriteTo writes indented JSON to w.
func (r *JSONResponse) WriteTo(w io.Writer, color bool) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s response: %w", r.Command, err)
	}
	out := string(data) + "\n"
	if color {
		out = highlightJSON(out)
	}
	_, err = io.WriteString(w, out)
	return err
}

// OutputJSON prints data as a JSONResponse in JSON mode and calls human
// otherwise.
func OutputJSON(jsonMode bool, command string, data interface{}, human func()) error {
	if jsonMode {
		return NewJSONResponse(command, data).Print()
	}
	if human != nil {
		human()
	}
	return nil
}

// StderrPrintln prints a line to stderr, keeping stdout clean for JSON.
func StderrPrintln(a ...interface{}) {
	fmt.Fprintln(os.Stderr, a...)
}

// highlightJSON colors JSON with chroma, returning it unchanged on error.
func highlightJSON(code string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
