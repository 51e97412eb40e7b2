package nbprop

import (
	"testing"

	"github.com/gonum/floats"
)

func TestBodyConstants(t *testing.T) {
	consts := NewBodyConstants()
	for _, body := range []Body{Sun, Mercury, Venus, Earth, Moon, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto} {
		gm, err := consts.GM(body.ID)
		if err != nil {
			t.Fatalf("no GM for %s: %s", body, err)
		}
		if gm != body.GM {
			t.Fatalf("wrong GM for %s", body)
		}
	}
	// Barycenters 1..9 are also resolvable.
	for id := 1; id <= 9; id++ {
		if _, err := consts.GM(id); err != nil {
			t.Fatalf("no GM for barycenter %d: %s", id, err)
		}
	}
}

func TestUnknownBody(t *testing.T) {
	consts := NewBodyConstants()
	_, err := consts.GM(424242)
	if err == nil {
		t.Fatal("expected an error for an unknown body")
	}
	ube, ok := err.(UnknownBodyError)
	if !ok {
		t.Fatalf("expected UnknownBodyError, got %T", err)
	}
	if ube.ID != 424242 {
		t.Fatalf("wrong id in error: %d", ube.ID)
	}
}

func TestDefine(t *testing.T) {
	consts := NewBodyConstants()
	consts.Define(2000001, 62.6284) // Ceres
	gm, err := consts.GM(2000001)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(gm, 62.6284, 1e-12) {
		t.Fatal("override not applied")
	}
	consts.Define(Moon.ID, 4902.8)
	gm, _ = consts.GM(Moon.ID)
	if gm != 4902.8 {
		t.Fatal("redefinition not applied")
	}
}

func TestBodyName(t *testing.T) {
	if BodyName(399) != "Earth" {
		t.Fatal("name fail")
	}
	if BodyName(123) != "body 123" {
		t.Fatal("fallback name fail")
	}
}
