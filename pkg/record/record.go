// Package record provides the pooled structured-record type produced by the
// connectivity core and the reader that assembles records from matched
// columns and a row cursor.
package record

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Metadata carries origin information for a record.
type Metadata struct {
	// Source identifies the producing connector or component.
	Source string `json:"source,omitempty"`
	// Database and Table name the origin relation when known.
	Database string `json:"database,omitempty"`
	Table    string `json:"table,omitempty"`
	// Timestamp is when the record was assembled.
	Timestamp time.Time `json:"timestamp"`
}

// Record is one structured value set produced per row. Records are pooled;
// obtain them with Get and return them with Release when the downstream
// consumer is done.
type Record struct {
	Data     map[string]interface{} `json:"data"`
	Metadata Metadata               `json:"metadata"`
}

var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{Data: make(map[string]interface{}, 16)}
	},
}

// Get retrieves a record from the pool with a fresh timestamp.
func Get(source string) *Record {
	r := recordPool.Get().(*Record)
	r.Metadata.Source = source
	r.Metadata.Timestamp = time.Now()
	return r
}

// Release clears the record and returns it to the pool.
func (r *Record) Release() {
	for k := range r.Data {
		delete(r.Data, k)
	}
	r.Metadata = Metadata{}
	recordPool.Put(r)
}

// SetData sets one field of the record payload.
func (r *Record) SetData(key string, value interface{}) {
	if r.Data == nil {
		r.Data = make(map[string]interface{}, 16)
	}
	r.Data[key] = value
}

// GetData retrieves one field of the record payload.
func (r *Record) GetData(key string) (interface{}, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// ToJSON serializes the record.
func (r *Record) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
