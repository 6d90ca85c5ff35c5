// Package output writes product records as JSON, JSON lines or CSV.
package output

import (
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/pkg/models"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// ErrorBody is what a failed scrape prints in place of a record
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	URL   string `json:"url,omitempty"`
}

// NewErrorBody describes err with its taxonomy code
func NewErrorBody(url string, err error) ErrorBody {
	return ErrorBody{Error: err.Error(), Code: string(extract.CodeOf(err)), URL: url}
}

// WriteJSON writes v followed by a newline. indent pretty-prints it.
func WriteJSON(w io.Writer, v interface{}, indent bool) error {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// SaveJSON writes the record, indented, to filepath
func SaveJSON(rec *models.ProductRecord, filepath string) error {
	f, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, rec, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteResultLine writes one batch result as a JSON line: the record, or the
// error body when the page failed
func WriteResultLine(w io.Writer, res models.ScrapeResult) error {
	if res.Err != nil {
		return WriteJSON(w, NewErrorBody(res.URL, res.Err), false)
	}
	return WriteJSON(w, struct {
		URL string `json:"url"`
		*models.ProductRecord
	}{res.URL, res.Record}, false)
}
