package port

import (
	"errors"
	"testing"
)

func TestDelivery_Add(t *testing.T) {
	var d Delivery

	d.Add(nil)
	d.Add(errors.New("smtp down"))
	d.Add(nil)

	if d.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", d.Attempted)
	}
	if d.Failed != 1 {
		t.Errorf("Failed = %d, want 1", d.Failed)
	}
	if !d.Degraded() {
		t.Errorf("Degraded() = false, want true")
	}
}

func TestDelivery_Merge(t *testing.T) {
	a := Delivery{Attempted: 2, Failed: 1}
	b := Delivery{Attempted: 3, Failed: 0}

	a.Merge(b)

	if a.Attempted != 5 || a.Failed != 1 {
		t.Errorf("Merge() = %+v, want Attempted 5 Failed 1", a)
	}
}

func TestDelivery_DegradedZeroValue(t *testing.T) {
	var d Delivery
	if d.Degraded() {
		t.Errorf("zero-value delivery must not be degraded")
	}
}
