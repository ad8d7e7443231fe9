package bitarray

import (
	"bytes"
	"reflect"
	"testing"
)

func mustDense(t *testing.T, s string) Dense {
	t.Helper()
	d, err := FromString(s)
	if err != nil {
		t.Fatalf("bad test string %q: %v", s, err)
	}
	return d
}

func TestDenseGet(t *testing.T) {
	tcs := []struct {
		name  string
		data  Dense
		edata []bool
	}{
		{"aligned", mustDense(t, "10101010"), []bool{true, false, true, false, true, false, true, false}},
		{"multibyte",
			mustDense(t, "00000000 101"),
			[]bool{false, false, false, false, false, false, false, false, true, false, true}},
		{"trailing zeros", NewDense(nil, 3), []bool{false, false, false}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var d []bool
			for i := 0; i < tc.data.Size(); i++ {
				d = append(d, tc.data.Get(i))
			}
			if !reflect.DeepEqual(d, tc.edata) {
				t.Errorf("Get() == %v, want %v", d, tc.edata)
			}
		})
	}
}

func TestDenseGetOutOfRange(t *testing.T) {
	d := mustDense(t, "111")
	if d.Get(3) || d.Get(-1) {
		t.Errorf("Get beyond bounds reads as set")
	}
}

func TestNewDenseTruncates(t *testing.T) {
	d := NewDense([]byte{0xFF}, 3)
	if got := d.String(); got != "111" {
		t.Errorf("NewDense(0xFF, 3) == %s, want 111", got)
	}
	if got := d.Data(); !bytes.Equal(got, []byte{0b111}) {
		t.Errorf("Data() == %v, want [7]", got)
	}
}

func TestAppendBit(t *testing.T) {
	var d Dense
	for _, b := range []bool{true, false, false, true, true, false, true, true, true} {
		d.AppendBit(b)
	}
	if got, want := d.String(), "100110111"; got != want {
		t.Errorf("appended array == %s, want %s", got, want)
	}
	if d.Size() != 9 {
		t.Errorf("Size() == %d, want 9", d.Size())
	}
}

func TestFlip(t *testing.T) {
	d := mustDense(t, "0000 0000 0")
	d.Flip(0)
	d.Flip(8)
	if got, want := d.String(), "100000001"; got != want {
		t.Errorf("flipped array == %s, want %s", got, want)
	}
}

func TestOnes(t *testing.T) {
	tcs := []struct {
		name string
		data Dense
		eout []int
	}{
		{"empty", Empty(), nil},
		{"none set", mustDense(t, "0000"), nil},
		{"some set", mustDense(t, "0110 0001 1"), []int{1, 2, 7, 8}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.data.Ones(); !reflect.DeepEqual(got, tc.eout) {
				t.Errorf("Ones() == %v, want %v", got, tc.eout)
			}
		})
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	if _, err := FromString("10x1"); err == nil {
		t.Errorf("FromString accepted a non-bit character")
	}
}
