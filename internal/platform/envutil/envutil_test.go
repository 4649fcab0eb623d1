package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("CF_TEST_INT", "abc")
	if got := Int("CF_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("CF_TEST_INT", " 42 ")
	if got := Int("CF_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestDurationAcceptsSecondsAndStrings(t *testing.T) {
	t.Setenv("CF_TEST_DUR", "15")
	if got := Duration("CF_TEST_DUR", time.Second); got != 15*time.Second {
		t.Fatalf("Duration seconds: got=%s", got)
	}
	t.Setenv("CF_TEST_DUR", "250ms")
	if got := Duration("CF_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration string: got=%s", got)
	}
}

func TestListDropsBlanks(t *testing.T) {
	t.Setenv("CF_TEST_LIST", "a, ,b,")
	got := List("CF_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
	if got := Bool("CF_TEST_MISSING_BOOL", true); !got {
		t.Fatalf("Bool default not honored")
	}
}

func TestFloatParses(t *testing.T) {
	t.Setenv("CF_TEST_FLOAT", "0.25")
	if got := Float("CF_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got=%v", got)
	}
	t.Setenv("CF_TEST_FLOAT", "x")
	if got := Float("CF_TEST_FLOAT", 1); got != 1 {
		t.Fatalf("Float fallback: got=%v", got)
	}
}
