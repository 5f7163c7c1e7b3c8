package charref

import (
	"github.com/dop251/goja"
)

// EnableJS defines two global functions in rt:
//
//	decodeEntities(s)   returns s with its character references decoded
//	lookupEntity(name)  returns the text for a named reference, or null
//
// If d is nil, they use the HTML5 table.
func EnableJS(rt *goja.Runtime, d *Decoder) error {
	if d == nil {
		d = defaultDecoder
	}

	if err := rt.Set("decodeEntities", d.Decode); err != nil {
		return err
	}

	return rt.Set("lookupEntity", func(name string) goja.Value {
		v, ok := d.table.Lookup(name)
		if !ok {
			return goja.Null()
		}
		return rt.ToValue(v)
	})
}
