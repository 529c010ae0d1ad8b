package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Output records and their sinks.
 *
 * Description:	A Record is an insertion-ordered key/value document,
 *		one per decoded group. Order matters: readers expect
 *		"pi" first on every line, so a plain map will not do.
 *		Values are scalars, arrays or nested Records.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type recordField struct {
	key   string
	value interface{}
}

// A Record holds the decoded contents of one group.
type Record struct {
	fields []recordField
}

func NewRecord() *Record {
	return &Record{}
}

func (r *Record) indexOf(key string) int {
	for i, f := range r.fields {
		if f.key == key {
			return i
		}
	}
	return -1
}

// Set stores a value under key, overwriting an earlier value but
// keeping its position.
func (r *Record) Set(key string, value interface{}) {
	if i := r.indexOf(key); i >= 0 {
		r.fields[i].value = value
		return
	}
	r.fields = append(r.fields, recordField{key: key, value: value})
}

// Append adds a value to the array under key, creating it if needed.
func (r *Record) Append(key string, value interface{}) {
	i := r.indexOf(key)
	if i < 0 {
		r.fields = append(r.fields, recordField{key: key, value: []interface{}{value}})
		return
	}
	arr, ok := r.fields[i].value.([]interface{})
	if !ok {
		arr = []interface{}{r.fields[i].value}
	}
	r.fields[i].value = append(arr, value)
}

// Nested returns the sub-record under key, creating it if needed.
func (r *Record) Nested(key string) *Record {
	if i := r.indexOf(key); i >= 0 {
		if sub, ok := r.fields[i].value.(*Record); ok {
			return sub
		}
	}
	sub := NewRecord()
	r.Set(key, sub)
	return sub
}

// Debug appends a diagnostic note to the record's "debug" array.
func (r *Record) Debug(format string, args ...interface{}) {
	r.Append("debug", fmt.Sprintf(format, args...))
}

func (r *Record) Get(key string) (interface{}, bool) {
	if i := r.indexOf(key); i >= 0 {
		return r.fields[i].value, true
	}
	return nil, false
}

func (r *Record) Len() int {
	return len(r.fields)
}

// MarshalJSON writes the fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// A RecordWriter receives every finished record.
type RecordWriter interface {
	WriteRecord(r *Record) error
}

// jsonLinesWriter emits one JSON document per line.
type jsonLinesWriter struct {
	w io.Writer
}

func NewJSONLinesWriter(w io.Writer) RecordWriter {
	return &jsonLinesWriter{w: w}
}

func (j *jsonLinesWriter) WriteRecord(r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	data = append(data, '\n')
	if _, err := j.w.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// multiRecordWriter fans a record out to several sinks. The first
// failure wins; later sinks still get the record.
type multiRecordWriter struct {
	writers []RecordWriter
}

func NewMultiRecordWriter(writers ...RecordWriter) RecordWriter {
	return &multiRecordWriter{writers: writers}
}

func (m *multiRecordWriter) WriteRecord(r *Record) error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.WriteRecord(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
