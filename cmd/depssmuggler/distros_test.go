package main

import "testing"

func TestRunDistrosSucceeds(t *testing.T) {
	if err := runDistros(distrosCmd, nil); err != nil {
		t.Fatalf("runDistros() err = %v", err)
	}
}
