package plan

import (
	"reflect"
	"unsafe"

	"github.com/shopspring/decimal"

	"csvcast/csvio"
	"csvcast/formatter"
	"csvcast/internal/schema"
	"csvcast/primitive"
)

// fieldProc is the pair of precompiled procedures for one field. Both
// receive a pointer to the record struct and touch only the bytes at
// the field's offset, so a fieldProc carries no per-call state.
type fieldProc struct {
	write func(w *csvio.Writer, rec unsafe.Pointer) error
	read  func(r *csvio.Reader, rec unsafe.Pointer) error
}

// procFor selects the fast path for f's kind once, at compile time.
// The zero kind routes through reg; the registry lookup happens at the
// field's first read or write, not here.
func procFor(f schema.Field, reg *formatter.Registry) fieldProc {
	off := f.Offset

	switch f.Kind {
	case primitive.KindBool:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteBool(*(*bool)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadBool()
				if err != nil {
					return err
				}
				*(*bool)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindInt8:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteInt8(*(*int8)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadInt8()
				if err != nil {
					return err
				}
				*(*int8)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindInt16:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteInt16(*(*int16)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadInt16()
				if err != nil {
					return err
				}
				*(*int16)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindInt32:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteInt32(*(*int32)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadInt32()
				if err != nil {
					return err
				}
				*(*int32)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindInt64:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteInt64(*(*int64)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadInt64()
				if err != nil {
					return err
				}
				*(*int64)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindUint8:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteUint8(*(*uint8)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadUint8()
				if err != nil {
					return err
				}
				*(*uint8)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindUint16:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteUint16(*(*uint16)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadUint16()
				if err != nil {
					return err
				}
				*(*uint16)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindUint32:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteUint32(*(*uint32)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadUint32()
				if err != nil {
					return err
				}
				*(*uint32)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindUint64:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteUint64(*(*uint64)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadUint64()
				if err != nil {
					return err
				}
				*(*uint64)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindFloat32:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteFloat32(*(*float32)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadFloat32()
				if err != nil {
					return err
				}
				*(*float32)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindFloat64:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteFloat64(*(*float64)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadFloat64()
				if err != nil {
					return err
				}
				*(*float64)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindDecimal:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteDecimal(*(*decimal.Decimal)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadDecimal()
				if err != nil {
					return err
				}
				*(*decimal.Decimal)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindString:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteString(*(*string)(unsafe.Add(rec, off)))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadString()
				if err != nil {
					return err
				}
				*(*string)(unsafe.Add(rec, off)) = v
				return nil
			},
		}
	case primitive.KindChar:
		return fieldProc{
			write: func(w *csvio.Writer, rec unsafe.Pointer) error {
				return w.WriteChar(rune(*(*primitive.Char)(unsafe.Add(rec, off))))
			},
			read: func(r *csvio.Reader, rec unsafe.Pointer) error {
				v, err := r.ReadChar()
				if err != nil {
					return err
				}
				*(*primitive.Char)(unsafe.Add(rec, off)) = primitive.Char(v)
				return nil
			},
		}
	}

	typ := f.Type
	return fieldProc{
		write: func(w *csvio.Writer, rec unsafe.Pointer) error {
			fm, err := reg.For(typ)
			if err != nil {
				return err
			}
			return fm.Write(w, reflect.NewAt(typ, unsafe.Add(rec, off)).Elem())
		},
		read: func(r *csvio.Reader, rec unsafe.Pointer) error {
			fm, err := reg.For(typ)
			if err != nil {
				return err
			}
			return fm.Read(r, reflect.NewAt(typ, unsafe.Add(rec, off)).Elem())
		},
	}
}

func compileProcs(sc *schema.Schema, reg *formatter.Registry) []fieldProc {
	procs := make([]fieldProc, len(sc.Fields))
	for i := range sc.Fields {
		procs[i] = procFor(sc.Fields[i], reg)
	}
	return procs
}
