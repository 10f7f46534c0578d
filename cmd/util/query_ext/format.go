package main

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/godbus/dbus/v5"

	"github.com/kaedenn/kext/util"
)

// FormatConfig controls the typed dump of D-Bus values.
type FormatConfig struct {
	MaxDepth  int    // Zero means unlimited
	OneLine   bool   // Everything on one line
	Indent    int    // Indent units per level when not OneLine
	IndentStr string // Indent unit
}

// DefaultFormatConfig prints on one line.
var DefaultFormatConfig = FormatConfig{OneLine: true, Indent: 2, IndentStr: " "}

// ParseFormatConfig applies "key=value" entries over DefaultFormatConfig.
// Entries may be comma separated. "key" means true, "!key" and "key="
// mean false. Setting indent without oneline turns oneline off.
func ParseFormatConfig(entries []string) (FormatConfig, error) {
	fc := DefaultFormatConfig
	var parts []string
	for _, e := range entries {
		parts = append(parts, strings.Split(e, ",")...)
	}

	onelineSet, indentSet := false, false
	for _, p := range parts {
		if p == "" {
			continue
		}
		k, v, hasValue := strings.Cut(p, "=")
		if !hasValue {
			v = "True"
		}
		if strings.HasPrefix(k, "!") {
			k, v = k[1:], "False"
		}

		switch k {
		case "maxdepth":
			if v == "None" || v == "" {
				fc.MaxDepth = 0
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fc, fmt.Errorf("maxdepth: invalid value %q", v)
			}
			fc.MaxDepth = n
		case "oneline":
			b, err := parseBool(v)
			if err != nil {
				return fc, fmt.Errorf("oneline: %w", err)
			}
			fc.OneLine, onelineSet = b, true
		case "indent":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fc, fmt.Errorf("indent: invalid value %q", v)
			}
			fc.Indent, indentSet = n, true
		case "indentstr":
			fc.IndentStr = strings.Trim(v, `"'`)
		default:
			return fc, fmt.Errorf("unknown format option %q", k)
		}
	}
	if indentSet && !onelineSet {
		fc.OneLine = false
	}
	return fc, nil
}

func parseBool(v string) (bool, error) {
	switch v {
	case "True", "true", "1":
		return true, nil
	case "False", "false", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// intTypes names the D-Bus integer types and their width in bytes.
var intTypes = map[reflect.Kind]struct {
	name string
	size int
}{
	reflect.Int16:  {"Int16", 2},
	reflect.Int32:  {"Int32", 4},
	reflect.Int64:  {"Int64", 8},
	reflect.Uint16: {"UInt16", 2},
	reflect.Uint32: {"UInt32", 4},
	reflect.Uint64: {"UInt64", 8},
}

var hexPrefix = "0x"

// Format renders v with its D-Bus type, e.g. String[3]('abc').
func Format(v any, fc FormatConfig) string {
	return formatValue(v, 0, fc)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(util.EscapeString(s), "'", `\'`) + "'"
}

func formatValue(v any, depth int, fc FormatConfig) string {
	if fc.MaxDepth > 0 && depth >= fc.MaxDepth {
		return "..."
	}

	switch t := v.(type) {
	case dbus.Variant:
		return formatValue(t.Value(), depth, fc)
	case bool:
		if t {
			return "(Boolean)True"
		}
		return "(Boolean)False"
	case byte:
		return "(Byte)" + strconv.FormatUint(uint64(t), 16)
	case []byte:
		hex := make([]string, len(t))
		for i, b := range t {
			hex[i] = fmt.Sprintf("%02x", b)
		}
		return fmt.Sprintf("(ByteArray)[%d](%s)", len(t), strings.Join(hex, " "))
	case float64:
		return "(Double)" + formatDouble(t)
	case dbus.ObjectPath:
		return "(ObjectPath)" + quote(string(t))
	case dbus.Signature:
		return "(Signature)" + quote(t.String())
	case dbus.UnixFD:
		return fmt.Sprintf("(UnixFd)%d", t)
	case string:
		return fmt.Sprintf("String[%d](%s)", utf8.RuneCountInString(t), quote(t))
	case []any:
		return "(Struct)" + formatStruct(t, depth, fc)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "(Unknown)None"
	}
	if it, ok := intTypes[rv.Kind()]; ok {
		return "(" + it.name + ")" + formatInt(rv, it.size)
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = formatValue(rv.Index(i).Interface(), depth+1, fc)
		}
		return formatContainer(fmt.Sprintf("Array[%d]", len(items)), items, depth, fc)
	case reflect.Map:
		items := make([]string, 0, rv.Len())
		sep := "="
		if !fc.OneLine {
			sep = " = "
		}
		iter := rv.MapRange()
		for iter.Next() {
			items = append(items, fmt.Sprint(iter.Key().Interface())+sep+formatValue(iter.Value().Interface(), depth+1, fc))
		}
		sort.Strings(items)
		return formatContainer(fmt.Sprintf("Dictionary[%d]", len(items)), items, depth, fc)
	}
	return fmt.Sprintf("(Unknown)%v", v)
}

func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func formatInt(rv reflect.Value, size int) string {
	f := util.NumberFormat{Base: 16, Pad: size * 2, Prefix: &hexPrefix}
	if rv.CanInt() {
		return util.FormatNumber(rv.Int(), f)
	}
	u := rv.Uint()
	if u > math.MaxInt64 {
		return fmt.Sprintf("0x%0*x", size*2, u)
	}
	return util.FormatNumber(int64(u), f)
}

func formatStruct(fields []any, depth int, fc FormatConfig) string {
	items := make([]string, len(fields))
	for i, f := range fields {
		items[i] = formatValue(f, depth+1, fc)
	}
	return "(" + strings.Join(items, ", ") + ")"
}

func formatContainer(head string, items []string, depth int, fc FormatConfig) string {
	if fc.OneLine {
		return head + "{" + strings.Join(items, ", ") + "}"
	}
	inner := strings.Repeat(fc.IndentStr, (depth+1)*fc.Indent)
	outer := strings.Repeat(fc.IndentStr, depth*fc.Indent)
	for i := range items {
		items[i] = inner + items[i]
	}
	return head + "{\n" + strings.Join(items, ",\n") + "\n" + outer + "}"
}

// Plain unwraps variants so a reply can be encoded as JSON.
func Plain(v any) any {
	switch t := v.(type) {
	case dbus.Variant:
		return Plain(t.Value())
	case dbus.ObjectPath:
		return string(t)
	case dbus.Signature:
		return t.String()
	case []byte:
		return string(t)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Plain(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Plain(rv.Index(i).Interface())
		}
		return out
	}
	return v
}
