package schedule

import (
	"reflect"
	"testing"
)

func slots(pairs ...int) []Timeslot {
	if len(pairs)%2 != 0 {
		panic("slots wants start/end pairs")
	}
	var out []Timeslot
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Timeslot{Start: pairs[i], End: pairs[i+1]})
	}
	return out
}

func TestMerge(t *testing.T) {
	cases := []struct {
		name      string
		existing  []Timeslot
		candidate Timeslot
		want      []Timeslot
	}{
		{
			name:      "into empty",
			candidate: Timeslot{Start: 480, End: 540},
			want:      slots(480, 540),
		},
		{
			name:      "overlap extends",
			existing:  slots(480, 540),
			candidate: Timeslot{Start: 530, End: 600},
			want:      slots(480, 600),
		},
		{
			name:      "exactly adjacent merges",
			existing:  slots(480, 540),
			candidate: Timeslot{Start: 540, End: 600},
			want:      slots(480, 600),
		},
		{
			name:      "gap preserved",
			existing:  slots(480, 600),
			candidate: Timeslot{Start: 601, End: 650},
			want:      slots(480, 600, 601, 650),
		},
		{
			name:      "candidate before existing sorts first",
			existing:  slots(600, 660),
			candidate: Timeslot{Start: 480, End: 540},
			want:      slots(480, 540, 600, 660),
		},
		{
			name:      "bridges two blocks",
			existing:  slots(480, 540, 600, 660),
			candidate: Timeslot{Start: 540, End: 600},
			want:      slots(480, 660),
		},
		{
			name:      "contained candidate absorbed",
			existing:  slots(480, 660),
			candidate: Timeslot{Start: 500, End: 520},
			want:      slots(480, 660),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Merge(tc.existing, tc.candidate)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Merge = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	merged, err := Merge(slots(480, 540, 600, 660), Timeslot{Start: 480, End: 540})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	again, err := Merge(merged, merged[0])
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !reflect.DeepEqual(merged, again) {
		t.Fatalf("re-merging a constituent changed the set: %v vs %v", merged, again)
	}
}

func TestMergeInvariant(t *testing.T) {
	candidates := slots(600, 660, 480, 540, 530, 610, 700, 720, 660, 700, 100, 200)
	var list []Timeslot
	var err error
	for _, c := range candidates {
		if list, err = Merge(list, c); err != nil {
			t.Fatalf("Merge(%v): %v", c, err)
		}
		for i := 1; i < len(list); i++ {
			if list[i].Start <= list[i-1].End {
				t.Fatalf("invariant broken after %v: %v", c, list)
			}
		}
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	existing := slots(480, 540)
	snapshot := slots(480, 540)
	if _, err := Merge(existing, Timeslot{Start: 530, End: 600}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !reflect.DeepEqual(existing, snapshot) {
		t.Fatalf("Merge mutated its input: %v", existing)
	}
}

func TestMergeRejectsMalformedCandidate(t *testing.T) {
	for _, bad := range []Timeslot{
		{Start: 540, End: 480},
		{Start: 480, End: 480},
		{Start: -10, End: 60},
		{Start: 1400, End: 1500},
	} {
		if _, err := Merge(nil, bad); err == nil {
			t.Errorf("Merge accepted malformed %v", bad)
		}
	}
}

func TestRemove(t *testing.T) {
	list := slots(480, 540, 600, 660)

	got := Remove(list, Timeslot{Start: 600, End: 660})
	if !reflect.DeepEqual(got, slots(480, 540)) {
		t.Fatalf("Remove = %v", got)
	}

	// no partial match, no re-split
	got = Remove(list, Timeslot{Start: 480, End: 500})
	if !reflect.DeepEqual(got, list) {
		t.Fatalf("Remove of absent slot changed list: %v", got)
	}
}
