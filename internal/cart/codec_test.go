package cart

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecode_PreservesOrder(t *testing.T) {
	cart := []Product{
		{ID: 3, Title: "C", Price: 1.5, Image: "c.jpg", Amount: 2},
		{ID: 1, Title: "A", Price: 10, Image: "a.jpg", Amount: 1},
		{ID: 2, Title: "B", Price: 3.25, Image: "b.jpg", Amount: 4},
	}

	raw, err := Encode(cart)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, cart) {
		t.Fatalf("got=%+v want=%+v", got, cart)
	}
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	raw, err := Encode(nil)
	if err != nil || raw != "[]" {
		t.Fatalf("raw=%q err=%v", raw, err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":      `{oops`,
		"object":        `{"id":1}`,
		"duplicate ids": `[{"id":1,"amount":1},{"id":1,"amount":2}]`,
		"zero amount":   `[{"id":1,"amount":0}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(raw); !errors.Is(err, ErrMalformedCart) {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestDecode_Null(t *testing.T) {
	got, err := Decode("null")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got=%#v", got)
	}
}
