// Copyright (c) 2024 The Koto developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"reflect"
	"unsafe"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// pointerSize is used by the §5 memory-accounting formula to estimate the
// per-entry bookkeeping overhead of the primary index's multiple internal
// orderings (by id, by score).
const pointerSize = unsafe.Sizeof(uintptr(0))

// mallocOverheadFactor approximates glibc/tcmalloc-style allocator
// bookkeeping overhead per heap allocation, the same constant the source
// uses for its own malloc_usable_size-based estimate.
const mallocOverheadFactor = 1.11

// mallocOverhead scales a raw byte count by the allocator-overhead
// factor, rounding up.
func mallocOverhead(n uintptr) uintptr {
	return uintptr(float64(n)*mallocOverheadFactor) + 1
}

// Per-container entry-size constants used by TxPool.DynamicMemoryUsage
// to approximate the dynamic footprint of components C, D, F, G, H, and
// E without a full reflect walk of every map in the pool on every call.
const (
	entrySize          = unsafe.Sizeof(Entry{})
	outpointEntrySize  = unsafe.Sizeof(wireOutPointKV{})
	deltaEntrySize     = unsafe.Sizeof(priorityFeeDelta{})
	nullifierEntrySize = chainhash.HashSize * 2
	costEntrySize      = chainhash.HashSize + unsafe.Sizeof(int64(0))
	addressEntrySize   = unsafe.Sizeof(AddressDelta{})
	spentEntrySize     = unsafe.Sizeof(SpentInfo{})
)

// wireOutPointKV exists only to size a representative (key, value) pair
// for the outpoint map in the constant block above.
type wireOutPointKV struct {
	key   [36]byte // chainhash.Hash + uint32, matching wire.OutPoint's layout
	value spentBy
}

// dynamicUsage computes an Entry's own dynamic memory footprint: the
// reflect walk of the underlying transaction body. This is what §3/§4.A
// calls usage_size and what the pool sums into cachedInnerUsage; it
// excludes the primary index's per-entry bookkeeping overhead, which
// DynamicMemoryUsage (mempool.go) accounts for once, in aggregate, via
// the "9 pointers per entry" term of §5's formula.
func dynamicUsage(e *Entry) uintptr {
	return dynamicMemUsage(reflect.ValueOf(e.Tx.MsgTx()).Elem())
}

func dynamicMemUsage(v reflect.Value) uintptr {
	return _dynamicMemUsage(v, false, 0)
}

func _dynamicMemUsage(v reflect.Value, debug bool, level int) uintptr {
	t := v.Type()
	bytes := t.Size()
	if debug {
		println("[", level, "]", t.Kind().String(), "(", t.String(), ") ->", t.Size())
	}

	// For complex types, we need to peek inside slices/arrays/structs/maps and chase pointers.
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			bytes += _dynamicMemUsage(v.Elem(), debug, level+1)
		}
	case reflect.Array, reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			vi := v.Index(j)
			k := vi.Type().Kind()
			if debug {
				println("[", level, "] index:", j, "kind:", k.String())
			}
			elemB := uintptr(0)
			if t.Kind() == reflect.Array {
				if (k == reflect.Pointer || k == reflect.Interface) && !vi.IsNil() {
					elemB += _dynamicMemUsage(vi.Elem(), debug, level+1)
				}
			} else { // slice
				elemB += _dynamicMemUsage(vi, debug, level+1)
			}
			if k == reflect.Uint8 {
				// short circuit for byte slice/array
				bytes += elemB * uintptr(v.Len())
				if debug {
					println("...", v.Len(), "elements")
				}
				break
			}
			bytes += elemB
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			vk := iter.Key()
			vv := iter.Value()
			if debug {
				println("[", level, "] key:", vk.Type().Kind().String())
			}
			bytes += _dynamicMemUsage(vk, debug, level+1)
			if debug {
				println("[", level, "] value:", vv.Type().Kind().String())
			}
			bytes += _dynamicMemUsage(vv, debug, level+1)
			if debug {
				println("...", v.Len(), "map elements")
			}
			debug = false
		}
	case reflect.Struct:
		for _, f := range reflect.VisibleFields(t) {
			vf := v.FieldByIndex(f.Index)
			k := vf.Type().Kind()
			if debug {
				println("[", level, "] field:", f.Name, "kind:", k.String())
			}
			if (k == reflect.Pointer || k == reflect.Interface) && !vf.IsNil() {
				bytes += _dynamicMemUsage(vf.Elem(), debug, level+1)
			} else if k == reflect.Array || k == reflect.Slice {
				bytes -= vf.Type().Size()
				bytes += _dynamicMemUsage(vf, debug, level+1)
			}
		}
	}

	return bytes
}
