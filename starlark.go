package charref

import (
	"errors"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// StarlarkModule returns a Starlark module named "charref" with two
// functions:
//
//	decode(s)      returns s with its character references decoded
//	lookup(name)   returns the text for a named reference, or None
//
// If d is nil, the module uses the HTML5 table.
func StarlarkModule(d *Decoder) *starlarkstruct.Module {
	if d == nil {
		d = defaultDecoder
	}

	return &starlarkstruct.Module{
		Name: "charref",
		Members: starlark.StringDict{
			"decode": starlark.NewBuiltin("decode", starlarkDecode).BindReceiver(starlarkDecoder{d}),
			"lookup": starlark.NewBuiltin("lookup", starlarkLookup).BindReceiver(starlarkDecoder{d}),
		},
	}
}

// starlarkDecoder lets a *Decoder be the receiver of a Starlark builtin.
// It is never visible to scripts.
type starlarkDecoder struct {
	d *Decoder
}

func (s starlarkDecoder) String() string       { return "charref.Decoder" }
func (s starlarkDecoder) Type() string         { return "charref.Decoder" }
func (s starlarkDecoder) Freeze()              {}
func (s starlarkDecoder) Truth() starlark.Bool { return true }

func (s starlarkDecoder) Hash() (uint32, error) {
	return 0, errors.New("unhashable type: charref.Decoder")
}

func starlarkDecode(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	d := fn.Receiver().(starlarkDecoder).d

	var s string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}

	return starlark.String(d.Decode(s)), nil
}

func starlarkLookup(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	d := fn.Receiver().(starlarkDecoder).d

	var name string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}

	v, ok := d.table.Lookup(name)
	if !ok {
		return starlark.None, nil
	}
	return starlark.String(v), nil
}
