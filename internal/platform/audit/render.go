package audit

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaskToken replaces a redacted argument in audit details.
const MaskToken = `"****"`

// Secret marks a string argument that must never be written to the audit
// trail verbatim. It is masked wherever it appears, including struct fields.
type Secret string

func (s Secret) String() string { return MaskToken }

// Reveal returns the underlying value.
func (s Secret) Reveal() string { return string(s) }

const maxRenderDepth = 4

var (
	secretType = reflect.TypeOf(Secret(""))
	timeType   = reflect.TypeOf(time.Time{})

	// package-qualified type names: "github.com/x/patient.Patient" -> "Patient"
	qualifiedTypeRe = regexp.MustCompile(`(?:[\w.-]+/)*[a-z_][\w]*\.([A-Z]\w*)`)
	// pointer addresses
	identityRe   = regexp.MustCompile(`\(?0x[0-9a-f]{4,}\)?`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SplitSignature splits a call signature of the form "Entity.method(..)"
// into its entity and action parts. Entity suffixes Service and Controller
// are removed; the action loses its parameter placeholder punctuation.
// A signature without a separator is all action.
func SplitSignature(signature string) (entity, action string) {
	signature = strings.TrimSpace(signature)
	head, tail, ok := strings.Cut(signature, ".")
	if !ok {
		return "", signature
	}
	entity = strings.ReplaceAll(head, "Service", "")
	entity = strings.TrimSpace(strings.ReplaceAll(entity, "Controller", ""))

	action = strings.ReplaceAll(tail, "()", "")
	action = strings.ReplaceAll(action, "..", "")
	action = strings.ReplaceAll(action, "(", "")
	action = strings.ReplaceAll(action, ")", "")
	return entity, strings.TrimSpace(action)
}

// IsCredentialAction reports whether action carries a plaintext credential
// in its second positional argument.
func IsCredentialAction(action string) bool {
	a := strings.ToLower(action)
	if a == "login" {
		return true
	}
	creates := strings.Contains(a, "criar") || strings.Contains(a, "create")
	user := strings.Contains(a, "usuario") || strings.Contains(a, "user")
	return creates && user
}

// RenderDetails renders call arguments as "[a, b, c]". For credential
// actions the second argument is replaced by MaskToken.
func RenderDetails(action string, args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = RenderArg(a)
	}
	if IsCredentialAction(action) && len(parts) > 1 {
		parts[1] = MaskToken
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RenderArg renders a single argument without package paths, pointer
// addresses or line breaks.
func RenderArg(arg any) string {
	if arg == nil {
		return "null"
	}
	s := renderValue(reflect.ValueOf(arg), 0)
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

func renderValue(v reflect.Value, depth int) string {
	if !v.IsValid() {
		return "null"
	}
	if v.Type() == secretType {
		return MaskToken
	}
	if depth > maxRenderDepth {
		return "..."
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			return x.Format(time.RFC3339)
		case error:
			return sanitize(x.Error())
		case fmt.Stringer:
			if v.Kind() != reflect.Pointer || !v.IsNil() {
				return sanitize(x.String())
			}
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "null"
		}
		return renderValue(v.Elem(), depth)
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Struct:
		if v.Type() == timeType {
			return "time"
		}
		return renderStruct(v, depth)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return "[]"
		}
		items := make([]string, v.Len())
		for i := range items {
			items[i] = renderValue(v.Index(i), depth+1)
		}
		return "[" + strings.Join(items, " ") + "]"
	case reflect.Map:
		if v.IsNil() {
			return "map[]"
		}
		keys := v.MapKeys()
		items := make([]string, 0, len(keys))
		for _, k := range keys {
			items = append(items, renderValue(k, depth+1)+":"+renderValue(v.MapIndex(k), depth+1))
		}
		sort.Strings(items)
		return "map[" + strings.Join(items, " ") + "]"
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return TypeName(v.Type())
	default:
		return sanitize(fmt.Sprint(v))
	}
}

func renderStruct(v reflect.Value, depth int) string {
	t := v.Type()
	var b strings.Builder
	b.WriteString(TypeName(t))
	b.WriteByte('{')
	for i := 0; i < t.NumField(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Field(i).Name)
		b.WriteByte(':')
		b.WriteString(renderValue(v.Field(i), depth+1))
	}
	b.WriteByte('}')
	return b.String()
}

// TypeName returns t's name without its package qualifier.
func TypeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return qualifiedTypeRe.ReplaceAllString(t.String(), "$1")
}

func sanitize(s string) string {
	s = qualifiedTypeRe.ReplaceAllString(s, "$1")
	return identityRe.ReplaceAllString(s, "")
}
