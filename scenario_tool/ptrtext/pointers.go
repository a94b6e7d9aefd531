package ptrtext

import (
	"encoding/binary"
	"fmt"
)

// SlotSize is the width of one pointer in scenario.dat.
const SlotSize = 4

// Slot is one pointer: where it sits in the pointer blob and what it holds.
type Slot struct {
	Position int
	Value    uint32
}

// PointerTable owns a copy of the pointer blob. Slots are read once at parse
// time; Rewrite patches the copy but does not touch Slots or the inverse map,
// so lookups always reflect the values the file was loaded with.
type PointerTable struct {
	raw   []byte
	slots []Slot
	byVal map[uint32][]int
}

// ParsePointerTable reads little-endian uint32 slots from offset 0. A partial
// trailing slot is not read but stays in the blob.
func ParsePointerTable(blob []byte) *PointerTable {
	raw := make([]byte, len(blob))
	copy(raw, blob)

	n := len(raw) / SlotSize
	t := &PointerTable{
		raw:   raw,
		slots: make([]Slot, 0, n),
		byVal: make(map[uint32][]int),
	}
	for pos := 0; pos+SlotSize <= len(raw); pos += SlotSize {
		v := binary.LittleEndian.Uint32(raw[pos : pos+SlotSize])
		t.slots = append(t.slots, Slot{Position: pos, Value: v})
		t.byVal[v] = append(t.byVal[v], pos)
	}
	return t
}

// Slots returns the pointers in file order.
func (t *PointerTable) Slots() []Slot { return t.slots }

// Positions returns every slot position that held value at parse time, in
// file order.
func (t *PointerTable) Positions(value uint32) []int { return t.byVal[value] }

// Rewrite overwrites the slot at pos with value.
func (t *PointerTable) Rewrite(pos int, value uint32) error {
	if pos < 0 || pos%SlotSize != 0 || pos+SlotSize > len(t.raw) {
		return fmt.Errorf("pointer slot 0x%X out of table (size %d)", pos, len(t.raw))
	}
	binary.LittleEndian.PutUint32(t.raw[pos:pos+SlotSize], value)
	return nil
}

// Bytes returns the current pointer blob, same length as the input.
func (t *PointerTable) Bytes() []byte { return t.raw }

// Trailing reports how many bytes at the end do not form a full slot.
func (t *PointerTable) Trailing() int { return len(t.raw) % SlotSize }
