package report

import (
	"io"
)

// Document is the JSON report.
type Document struct {
	Summary Summary `json:"summary"`
	Rows    []Row   `json:"rows"`
}

// WriteJSON writes the summary and all rows as one JSON document.
func WriteJSON(w io.Writer, texts []string, groups [][]uint32, optFns ...Option) error {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return writeJSON(w, texts, groups, &o)
}

func writeJSON(w io.Writer, texts []string, groups [][]uint32, o *options) error {
	rows, err := Collect(texts, groups)
	if err != nil {
		return err
	}

	data, err := o.codec.Marshal(Document{
		Summary: Summarize(len(texts), groups),
		Rows:    rows,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
