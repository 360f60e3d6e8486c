package field

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack returns a field holding any Go value, stored as a BLOB with the
// msgpack encoding of the value. A NULL or empty column, or one that fails
// to decode, leaves the field at its zero value.
//
//	field.MsgPack("tags", func(w *Widget) *map[string]string { return &w.Tags })
func MsgPack[T, V any](name string, ptr func(*T) *V) *Builder {
	return scalar[T, V](name, TypeBytes, ptr,
		func(v V) any {
			b, err := msgpack.Marshal(v)
			if err != nil {
				return fmt.Errorf("field %q: encode msgpack: %w", name, err)
			}
			return b
		},
		func(p *V, v any) {
			b, ok := v.([]byte)
			if !ok || len(b) == 0 {
				return
			}
			var decoded V
			if err := msgpack.Unmarshal(b, &decoded); err == nil {
				*p = decoded
			}
		},
	)
}
