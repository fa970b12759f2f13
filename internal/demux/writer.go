package demux

import (
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

const lineWidth = 100000

// RecordWriter writes records in an async fashion
// Call Close() when you're done!
type RecordWriter struct {
	writer  *xopen.Writer
	cache   []*fastx.Record
	records chan []*fastx.Record
	done    chan error
}

// NewRecordWriter creates a writer for filename that hands records to a
// background goroutine cachesize at a time.
func NewRecordWriter(filename string, cachesize int) (*RecordWriter, error) {
	writer, err := xopen.Wopen(filename)
	if err != nil {
		return nil, err
	}

	w := &RecordWriter{
		cache:   make([]*fastx.Record, 0, cachesize),
		records: make(chan []*fastx.Record),
		done:    make(chan error, 1),
		writer:  writer,
	}
	go w.run()
	return w, nil
}

func (w *RecordWriter) run() {
	for records := range w.records {
		for _, record := range records {
			record.FormatToWriter(w.writer, lineWidth)
		}
	}
	w.done <- w.writer.Close()
}

// Write queues record. Records are only guaranteed on disk after Close.
func (w *RecordWriter) Write(record *fastx.Record) {
	w.cache = append(w.cache, record)
	if cap(w.cache) == len(w.cache) {
		w.Flush()
	}
}

// Flush hands the cached records to the background writer.
func (w *RecordWriter) Flush() {
	if len(w.cache) == 0 {
		return
	}
	w.records <- w.cache
	w.cache = make([]*fastx.Record, 0, cap(w.cache))
}

// Close flushes pending records and closes the file.
func (w *RecordWriter) Close() error {
	w.Flush()
	close(w.records)
	return <-w.done
}
