package formatter

import (
	"reflect"
	"time"

	"csvcast/csvio"
)

func registerBuiltins(r *Registry) {
	r.Register(reflect.TypeOf(time.Time{}), timeFormatter{})
}

// timeFormatter encodes time.Time as RFC3339Nano text. An empty cell
// reads back as the zero time.
type timeFormatter struct{}

func (timeFormatter) Write(w *csvio.Writer, v reflect.Value) error {
	t := v.Interface().(time.Time)
	if t.IsZero() {
		return w.WriteString("")
	}
	return w.WriteString(t.Format(time.RFC3339Nano))
}

func (timeFormatter) Read(r *csvio.Reader, v reflect.Value) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	if s == "" {
		v.Set(reflect.ValueOf(time.Time{}))
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(t))
	return nil
}
