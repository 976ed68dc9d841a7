package event

import "testing"

func TestIdentityString(t *testing.T) {
	cases := []struct {
		name string
		id   Identity
		want string
	}{
		{"uid-only", Identity{UID: "a@ex"}, "a@ex"},
		{"with-recurrence-id", Identity{UID: "m@ex", RecurrenceID: "20250320T150000Z"}, "m@ex__20250320T150000Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.id.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if got := ParseIdentity(tc.want); got != tc.id {
				t.Errorf("ParseIdentity(%q) = %+v, want %+v", tc.want, got, tc.id)
			}
		})
	}
}

func TestIdentityLess(t *testing.T) {
	a := Identity{UID: "a@ex"}
	b := Identity{UID: "b@ex"}
	if !a.Less(b) {
		t.Errorf("expected a@ex < b@ex")
	}
	if b.Less(a) {
		t.Errorf("expected b@ex not < a@ex")
	}
}

func TestIdentityOf(t *testing.T) {
	e := &Event{UID: "m@ex", RecurrenceID: "20250320T150000Z"}
	got := IdentityOf(e)
	want := Identity{UID: "m@ex", RecurrenceID: "20250320T150000Z"}
	if got != want {
		t.Errorf("IdentityOf() = %+v, want %+v", got, want)
	}
}
