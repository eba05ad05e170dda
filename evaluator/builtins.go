package evaluator

import (
	"time"

	"github.com/podhmo/minilox/object"
)

// DefaultNatives returns the natives every fresh global environment
// starts with. now is the clock used by clock(); nil means time.Now.
func DefaultNatives(now func() time.Time) []*object.Builtin {
	if now == nil {
		now = time.Now
	}
	return []*object.Builtin{
		{
			Ident:     "clock",
			NumParams: 0,
			Fn: func(args ...object.Object) (object.Object, error) {
				t := now()
				return &object.Number{Value: float64(t.UnixNano()) / float64(time.Second)}, nil
			},
		},
	}
}

// Install defines each native in env under its own name.
func Install(env *object.Environment, natives ...*object.Builtin) {
	for _, b := range natives {
		env.Define(b.Ident, b)
	}
}
