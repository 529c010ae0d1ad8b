package redbone

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	var r = NewRecord()
	r.Set("pi", "0x6201")
	r.Set("group", "0A")
	r.Set("tp", false)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"pi":"0x6201","group":"0A","tp":false}`, string(data))
}

func TestRecordSetOverwriteKeepsPosition(t *testing.T) {
	var r = NewRecord()
	r.Set("pi", "0x6201")
	r.Set("ps", "Radio 9")
	r.Set("pi", "0x6202")

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"pi":"0x6202","ps":"Radio 9"}`, string(data))
}

func TestRecordAppend(t *testing.T) {
	var r = NewRecord()
	r.Append("alt_frequencies_a", 87800)
	r.Append("alt_frequencies_a", 97200)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"alt_frequencies_a":[87800,97200]}`, string(data))
}

func TestRecordNested(t *testing.T) {
	var r = NewRecord()
	r.Set("pi", "0x6201")
	r.Nested("di").Set("stereo", true)
	r.Nested("di").Set("compressed", false)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"pi":"0x6201","di":{"stereo":true,"compressed":false}}`, string(data))
}

func TestRecordDebug(t *testing.T) {
	var r = NewRecord()
	r.Debug("TODO: EON variant %d", 11)

	value, ok := r.Get("debug")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"TODO: EON variant 11"}, value)
}

func TestRecordGetAndLen(t *testing.T) {
	var r = NewRecord()
	assert.Equal(t, 0, r.Len())

	_, ok := r.Get("pi")
	assert.False(t, ok)

	r.Set("pi", "0x6201")
	value, ok := r.Get("pi")
	assert.True(t, ok)
	assert.Equal(t, "0x6201", value)
	assert.Equal(t, 1, r.Len())
}

func TestJSONLinesWriter(t *testing.T) {
	var buf bytes.Buffer
	var w = NewJSONLinesWriter(&buf)

	var r = NewRecord()
	r.Set("pi", "0x6201")
	require.NoError(t, w.WriteRecord(r))

	var r2 = NewRecord()
	r2.Set("pi", "0x6202")
	require.NoError(t, w.WriteRecord(r2))

	assert.Equal(t, "{\"pi\":\"0x6201\"}\n{\"pi\":\"0x6202\"}\n", buf.String())
}

type failingWriter struct {
	err error
}

func (f *failingWriter) WriteRecord(r *Record) error {
	return f.err
}

type countingWriter struct {
	count int
}

func (c *countingWriter) WriteRecord(r *Record) error {
	c.count++
	return nil
}

func TestMultiRecordWriter(t *testing.T) {
	var failed = errors.New("broker gone")
	var counter = &countingWriter{}
	var w = NewMultiRecordWriter(&failingWriter{err: failed}, counter)

	var r = NewRecord()
	r.Set("pi", "0x6201")

	// The failure is reported, but later sinks still get the record.
	assert.ErrorIs(t, w.WriteRecord(r), failed)
	assert.Equal(t, 1, counter.count)
}
