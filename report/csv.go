package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes one row per record.
func WriteCSV(w io.Writer, texts []string, groups [][]uint32, optFns ...Option) error {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return writeCSV(w, texts, groups, &o)
}

func writeCSV(w io.Writer, texts []string, groups [][]uint32, o *options) error {
	cw := csv.NewWriter(w)
	if !o.noHeader {
		if err := cw.Write(Header); err != nil {
			return err
		}
	}

	rec := make([]string, len(Header))
	for row, err := range Rows(texts, groups) {
		if err != nil {
			return err
		}
		rec[0] = strconv.FormatUint(uint64(row.DocID), 10)
		rec[1] = row.Text
		rec[2] = strconv.Itoa(row.DupeID)
		rec[3] = strconv.Itoa(row.GroupSize)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
