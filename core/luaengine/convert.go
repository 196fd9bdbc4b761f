package luaengine

import (
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value for display. Integral numbers become int64,
// sequences become slices and other tables become maps keyed by string.
func toGo(v lua.LValue) interface{} {
	return convert(v, make(map[*lua.LTable]bool))
}

func convert(v lua.LValue, seen map[*lua.LTable]bool) interface{} {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if seen[v] {
			return "<cycle>"
		}
		seen[v] = true
		defer delete(seen, v)
		return convertTable(v, seen)
	default:
		return v.String()
	}
}

func convertTable(t *lua.LTable, seen map[*lua.LTable]bool) interface{} {
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })

	if n := t.MaxN(); n > 0 && n == count {
		out := make([]interface{}, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, convert(t.RawGetInt(i), seen))
		}
		return out
	}

	out := make(map[string]interface{}, count)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = convert(v, seen)
	})
	return out
}

// sortedGlobals lists the names of user-defined globals.
func sortedGlobals(L *lua.LState, builtin map[string]bool) []string {
	var names []string
	L.G.Global.ForEach(func(k, _ lua.LValue) {
		if name, ok := k.(lua.LString); ok && !builtin[string(name)] {
			names = append(names, string(name))
		}
	})
	sort.Strings(names)
	return names
}
