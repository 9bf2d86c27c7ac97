package topics

import "testing"

func TestAllInCatalogOrder(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("expected 8 topics, got %d", len(all))
	}
	if all[0] != Attendance || all[7] != Volunteering {
		t.Errorf("unexpected order: %v", all)
	}

	// Mutating the copy must not affect the catalog.
	all[0] = "x"
	if All()[0] != Attendance {
		t.Error("All() returned shared slice")
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name  string
		asked []Topic
		want  int
	}{
		{"none asked", nil, 8},
		{"two asked", []Topic{Grades, Reading}, 6},
		{"all asked", All(), 0},
		{"unknown ignored", []Topic{"bogus"}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remaining(tt.asked)
			if len(got) != tt.want {
				t.Fatalf("Remaining(%v) = %v, want %d topics", tt.asked, got, tt.want)
			}
			for _, g := range got {
				for _, a := range tt.asked {
					if g == a {
						t.Errorf("asked topic %q returned as remaining", g)
					}
				}
			}
		})
	}
}

func TestEveryTopicHasCategoryAndQuery(t *testing.T) {
	for _, tp := range All() {
		if tp.Category() == CategoryOther {
			t.Errorf("%s maps to the fallback category", tp)
		}
		if tp.Query() == "" || tp.Label() == "" || tp.Guideline() == "" {
			t.Errorf("%s is missing catalog text", tp)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Topic
		wantErr bool
	}{
		{"grades", Grades, false},
		{" reading ", Reading, false},
		{"인성/태도", Character, false},
		{"봉사", Volunteering, false},
		{"sports", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPickers(t *testing.T) {
	remaining := []Topic{Club, Reading, Career}

	if got := (FirstPicker{}).Pick(remaining); got != Club {
		t.Errorf("FirstPicker picked %q, want %q", got, Club)
	}

	seen := map[Topic]bool{}
	for range 200 {
		p := (RandomPicker{}).Pick(remaining)
		if !p.Valid() {
			t.Fatalf("RandomPicker returned invalid topic %q", p)
		}
		seen[p] = true
	}
	if len(seen) != len(remaining) {
		t.Errorf("RandomPicker covered %d of %d topics in 200 draws", len(seen), len(remaining))
	}
}
