/*
package dep provides utilities for dependency injection.

okay, just the one.
*/
package dep

import (
	"fmt"
	"reflect"
	"runtime"
)

func missing(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Interface:
		return v.IsNil() || missing(v.Elem())
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Required returns t, or panics naming the caller if t is nil.  A typed nil
// pointer inside an interface counts as nil.
func Required[T any](t T) T {
	if !missing(reflect.ValueOf(&t).Elem()) {
		return t
	}
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		panic(fmt.Sprintf("missing required dependency of type %T", t))
	}
	fn := runtime.FuncForPC(pc)
	if fn != nil {
		panic(fmt.Sprintf("missing required dependency in %s (%s:%d)", fn.Name(), file, line))
	} else {
		panic(fmt.Sprintf("missing required dependency (%s:%d)", file, line))
	}
}
