package depot

import "github.com/TheBitDrifter/mask"

// ArchetypeMask is the structural identity of an archetype (spec.md §3
// invariant 1): a pair of fixed-width bitsets, one over the component-id
// space and one over the shared-component-id space, each paired with a
// "manual" flag bitset over the same space (spec.md §4.2). It is a plain
// comparable value, so — unlike the source's explicit Hash functor — it
// can be used directly as a Go map key.
//
// mask.Mask256 is the teacher's own fixed-width bitset
// (github.com/TheBitDrifter/mask), already put to exactly this use in
// storage.go ("sto.locks mask.Mask256"); it is reused here verbatim for
// both the component space (256 wide, matching MaxComponentIDCount) and
// the shared-component space (128 of its 256 bits used, matching
// MaxSharedComponentIDCount).
type ArchetypeMask struct {
	components     mask.Mask256
	componentFlags mask.Mask256 // manual bits, subset of components
	shared         mask.Mask256
	sharedFlags    mask.Mask256 // manual bits, subset of shared
	componentCount int
	sharedCount    int
}

func bit(id uint32) mask.Mask256 {
	var m mask.Mask256
	m.Mark(id)
	return m
}

// MarkComponent sets component id's bit, and its manual flag if manual.
// Idempotent with respect to the popcount bookkeeping: marking an
// already-set id does not double count.
func (m *ArchetypeMask) MarkComponent(id uint32, manual bool) {
	if !m.ContainsComponent(id) {
		m.componentCount++
	}
	m.components.Mark(id)
	if manual {
		m.componentFlags.Mark(id)
	}
}

// UnmarkComponent clears component id's bit and manual flag.
func (m *ArchetypeMask) UnmarkComponent(id uint32) {
	if m.ContainsComponent(id) {
		m.componentCount--
	}
	m.components.Unmark(id)
	m.componentFlags.Unmark(id)
}

// MarkShared sets shared-component id's bit, and its manual flag if manual.
func (m *ArchetypeMask) MarkShared(id uint32, manual bool) {
	if !m.ContainsShared(id) {
		m.sharedCount++
	}
	m.shared.Mark(id)
	if manual {
		m.sharedFlags.Mark(id)
	}
}

// UnmarkShared clears shared-component id's bit and manual flag.
func (m *ArchetypeMask) UnmarkShared(id uint32) {
	if m.ContainsShared(id) {
		m.sharedCount--
	}
	m.shared.Unmark(id)
	m.sharedFlags.Unmark(id)
}

// ContainsComponent reports whether the mask carries component id.
func (m ArchetypeMask) ContainsComponent(id uint32) bool {
	return m.components.ContainsAll(bit(id))
}

// ContainsShared reports whether the mask carries shared-component id.
func (m ArchetypeMask) ContainsShared(id uint32) bool {
	return m.shared.ContainsAll(bit(id))
}

// IsComponentManual reports whether component id, if present, is flagged
// manual.
func (m ArchetypeMask) IsComponentManual(id uint32) bool {
	return m.componentFlags.ContainsAll(bit(id))
}

// IsSharedManual reports whether shared-component id, if present, is
// flagged manual.
func (m ArchetypeMask) IsSharedManual(id uint32) bool {
	return m.sharedFlags.ContainsAll(bit(id))
}

// FullyManual reports whether every component and shared-component bit
// set in the mask is also flagged manual (spec.md §4.2, invariant 6).
func (m ArchetypeMask) FullyManual() bool {
	return m.componentFlags == m.components && m.sharedFlags == m.shared
}

// Single reports whether the mask carries exactly one bit across both
// spaces combined (spec.md §4.2).
func (m ArchetypeMask) Single() bool {
	return m.componentCount+m.sharedCount == 1
}

// ContainsAllComponents reports whether every bit set in required is also
// set in m's component mask.
func (m ArchetypeMask) ContainsAllComponents(required mask.Mask256) bool {
	return m.components.ContainsAll(required)
}

// ContainsNoneComponents reports whether none of the bits set in
// rejected are set in m's component mask.
func (m ArchetypeMask) ContainsNoneComponents(rejected mask.Mask256) bool {
	return m.components.ContainsNone(rejected)
}

// ContainsAllShared reports whether every bit set in required is also set
// in m's shared-component mask.
func (m ArchetypeMask) ContainsAllShared(required mask.Mask256) bool {
	return m.shared.ContainsAll(required)
}

// ContainsNoneShared reports whether none of the bits set in rejected are
// set in m's shared-component mask.
func (m ArchetypeMask) ContainsNoneShared(rejected mask.Mask256) bool {
	return m.shared.ContainsNone(rejected)
}
