package primitive

import (
	"reflect"
	"strconv"

	"github.com/shopspring/decimal"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// Char is a single-character CSV cell. Go cannot tell a rune apart from
// an int32 by its reflect type, so character fields must declare this
// named type to take the character fast path; plain rune fields take
// the int32 path.
type Char rune

type KindEnum int

const (
	_ KindEnum = iota // zero value marks "other", routed to the formatter registry

	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindChar

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64, KindDecimal:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

// FromReflectType classifies rtype into one of the fast-path kinds.
// Platform-width int and uint map to the kind matching their actual
// size. Named types other than Char and decimal.Decimal return the
// zero kind and are handled by the formatter registry.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case reflect.TypeOf(false):
		return KindBool
	case reflect.TypeOf(int8(0)):
		return KindInt8
	case reflect.TypeOf(int16(0)):
		return KindInt16
	case reflect.TypeOf(int32(0)):
		return KindInt32
	case reflect.TypeOf(int64(0)):
		return KindInt64
	case reflect.TypeOf(int(0)):
		if strconv.IntSize == 64 {
			return KindInt64
		}
		return KindInt32
	case reflect.TypeOf(uint8(0)):
		return KindUint8
	case reflect.TypeOf(uint16(0)):
		return KindUint16
	case reflect.TypeOf(uint32(0)):
		return KindUint32
	case reflect.TypeOf(uint64(0)):
		return KindUint64
	case reflect.TypeOf(uint(0)):
		if strconv.IntSize == 64 {
			return KindUint64
		}
		return KindUint32
	case reflect.TypeOf(float32(0)):
		return KindFloat32
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	case reflect.TypeOf(decimal.Decimal{}):
		return KindDecimal
	case reflect.TypeOf(""):
		return KindString
	case reflect.TypeOf(Char(0)):
		return KindChar
	}

	return 0
}
