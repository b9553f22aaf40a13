/*
varz provides helpers to create expvar variables with package-qualified names,
so dbcache's hit counter shows up as "github.com/ts4z/brochure/dbcache.featureCacheHits".
The server mounts Handler at /debug/vars.
*/
package varz

import (
	"expvar"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// callerPackage returns the package name of the caller of the
// function.  Use a loose heuristic to get that split apart.
// If the variable is declared in a var block, this will remove the
// "init" bit.
func callerPackage() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "varz.unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "varz.unknown"
	}
	return packageOf(fn.Name())
}

// packageOf strips the function part off a qualified function name, minding
// that the import path itself has dots in it.
func packageOf(funcName string) string {
	slash := strings.LastIndex(funcName, "/")
	dot := strings.Index(funcName[slash+1:], ".")
	if dot == -1 {
		return funcName
	}
	return funcName[:slash+1+dot]
}

func NewInt(name string) *expvar.Int {
	return expvar.NewInt(fmt.Sprintf("%s.%s", callerPackage(), name))
}

func NewMap(name string) *expvar.Map {
	return expvar.NewMap(fmt.Sprintf("%s.%s", callerPackage(), name))
}

func Handler() http.Handler {
	return expvar.Handler()
}
