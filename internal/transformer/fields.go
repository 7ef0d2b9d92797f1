package transformer

import (
	"fmt"

	"songetl/pkg/records"
)

// fields reads typed values from a record and keeps the first error, so a
// projection can be written as one struct literal and checked once.
type fields struct{ err error }

func (f *fields) keep(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}

func (f *fields) text(r records.Record, key string) *string {
	v, err := r.Text(key)
	f.keep(err)
	return v
}

func (f *fields) float(r records.Record, key string) *float64 {
	v, err := r.Float(key)
	f.keep(err)
	return v
}

func (f *fields) int(r records.Record, key string) *int64 {
	v, err := r.Int(key)
	f.keep(err)
	return v
}

func (f *fields) requiredText(r records.Record, key string) string {
	v := f.text(r, key)
	if v == nil {
		f.keep(fmt.Errorf("field %q is null", key))
		return ""
	}
	return *v
}

func (f *fields) requiredFloat(r records.Record, key string) float64 {
	v := f.float(r, key)
	if v == nil {
		f.keep(fmt.Errorf("field %q is null", key))
		return 0
	}
	return *v
}

func (f *fields) requiredInt(r records.Record, key string) int64 {
	v := f.int(r, key)
	if v == nil {
		f.keep(fmt.Errorf("field %q is null", key))
		return 0
	}
	return *v
}
