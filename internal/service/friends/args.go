package friends

import (
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	svcErr "github.com/oggyb/moodfriends/internal/errors"
)

// args reads request fields. IDs travel as decimal strings; plain numbers
// are accepted too since JSON clients often send them.
type args struct {
	fields map[string]*structpb.Value
}

func argsOf(in *structpb.Struct) args {
	return args{fields: in.GetFields()}
}

func (a args) has(name string) bool {
	v, ok := a.fields[name]
	if !ok {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (a args) str(name string) string {
	v, ok := a.fields[name]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	}
	return ""
}

// optStr returns nil when name is absent or empty.
func (a args) optStr(name string) *string {
	s := strings.TrimSpace(a.str(name))
	if s == "" {
		return nil
	}
	return &s
}

func (a args) id(name string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(a.str(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a valid uint64")
	}
	return id, nil
}

func (a args) integer(name string) (int, error) {
	v, ok := a.fields[name]
	if !ok {
		return 0, svcErr.InvalidArgument(name + " is required")
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) {
			return 0, svcErr.InvalidArgument(name + " must be an integer")
		}
		return int(k.NumberValue), nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(strings.TrimSpace(k.StringValue))
		if err != nil {
			return 0, svcErr.InvalidArgument(name + " must be an integer")
		}
		return n, nil
	}
	return 0, svcErr.InvalidArgument(name + " must be an integer")
}

// limit reads an optional page size: absent or non-positive gives defLimit,
// anything above maxLimit is capped. The result is always at least 1.
func (a args) limit(name string, defLimit, maxLimit int) (int, error) {
	maxLimit = max(maxLimit, 1)
	defLimit = min(max(defLimit, 1), maxLimit)
	if !a.has(name) {
		return defLimit, nil
	}
	n, err := a.integer(name)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return defLimit, nil
	}
	return min(n, maxLimit), nil
}

func (a args) strings(name string) []string {
	v, ok := a.fields[name]
	if !ok {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		if s, ok := item.GetKind().(*structpb.Value_StringValue); ok {
			out = append(out, s.StringValue)
		}
	}
	return out
}

// fields is a response object; values must be structpb-compatible
// (nested objects as fields, lists as []any).
type fields = map[string]any

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func respond(f fields) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(f)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return out, nil
}
