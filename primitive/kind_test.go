package primitive_test

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"

	"csvcast/primitive"
)

func Example() {
	type Custom struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int64(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(uint16(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(false)))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(decimal.Decimal{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(primitive.Char(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(rune(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Custom{})))
	// Output:
	// KindString
	// KindInt64
	// KindUint16
	// KindBool
	// KindDecimal
	// KindChar
	// KindInt32
	// KindEnum(0)
}
