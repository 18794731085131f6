package testutil

import (
	"reflect"
	"testing"
)

func TestMustBuild(t *testing.T) {
	a := MustBuild(t, MonsterRules, 0)
	if n := a.Count(MonsterMessages); n != 2 {
		t.Fatalf("count %d", n)
	}
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "verdict-ish map",
			arg:  map[string]interface{}{"message": "ababbb", "match": true},
			want: `{"match":true,"message":"ababbb"}`,
		},
		{
			name: "unmarshalable",
			arg:  func() {},
			want: "(func())",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := JS(tc.arg)
			if tc.name == "unmarshalable" {
				if got == "" {
					t.Fatal("empty")
				}
				return
			}
			if got != tc.want {
				t.Fatalf("got %s, wanted %s", got, tc.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	got := Dwimjs(`{"grammar":"monster","message":"ab"}`)
	want := map[string]interface{}{"grammar": "monster", "message": "ab"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
	if x := Dwimjs(42); x != 42 {
		t.Fatalf("got %#v", x)
	}
	if x := Dwimjs([]byte(`[1]`)); !reflect.DeepEqual(x, []interface{}{float64(1)}) {
		t.Fatalf("got %#v", x)
	}
}
