package mdc

import "testing"

func TestCellConfigAllSameSignHasNoComponents(t *testing.T) {
	for _, mask := range []uint8{0x00, 0xFF} {
		cfg := lookupCellConfig(mask)
		if len(cfg.components) != 0 {
			t.Errorf("mask %#02x: got %d components, want 0", mask, len(cfg.components))
		}
	}
}

func TestCellConfigSingleCornerFlippedIsOneComponent(t *testing.T) {
	for corner := 0; corner < numCorners; corner++ {
		mask := uint8(1 << uint(corner))
		cfg := lookupCellConfig(mask)
		if len(cfg.components) != 1 {
			t.Fatalf("corner %d: got %d components, want 1", corner, len(cfg.components))
		}
		if len(cfg.components[0]) != 3 {
			t.Errorf("corner %d: component has %d edges, want 3", corner, len(cfg.components[0]))
		}
	}
}

func TestCellConfigEveryActiveEdgeAssignedExactlyOnce(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		cfg := lookupCellConfig(uint8(mask))
		seen := map[int]bool{}
		for _, comp := range cfg.components {
			for _, e := range comp {
				if seen[e] {
					t.Fatalf("mask %#02x: edge %d assigned to more than one component", mask, e)
				}
				seen[e] = true
			}
		}
		for e := 0; e < numEdges; e++ {
			a, b := edgeCorners[e][0], edgeCorners[e][1]
			signA := mask&(1<<uint(a)) != 0
			signB := mask&(1<<uint(b)) != 0
			isActive := signA != signB
			if isActive != seen[e] {
				t.Errorf("mask %#02x edge %d: active=%v but assigned=%v", mask, e, isActive, seen[e])
			}
		}
	}
}

func TestCellConfigOppositeCornersSplitIntoTwoComponents(t *testing.T) {
	// Corners 0 and 7 sit on the cube's main body diagonal and share no
	// face, so flipping both should keep their two 3-edge neighborhoods
	// separate: 6 active edges total, none shared between components.
	mask := uint8(1<<0 | 1<<7)
	cfg := lookupCellConfig(mask)
	if len(cfg.components) != 2 {
		t.Fatalf("got %d components, want 2", len(cfg.components))
	}
	total := 0
	for _, c := range cfg.components {
		total += len(c)
	}
	if total != 6 {
		t.Fatalf("got %d total active edges across components, want 6", total)
	}
}

func TestCellConfigIsDeterministic(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		a := buildCellConfig(uint8(mask))
		b := buildCellConfig(uint8(mask))
		if len(a.components) != len(b.components) {
			t.Fatalf("mask %#02x: nondeterministic component count", mask)
		}
	}
}
