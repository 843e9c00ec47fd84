package config

import (
	"testing"
	"time"

	kit "churnscope/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	core := root.Prefix("CORE_")
	if got := core.key("HORIZON"); got != "CORE_HORIZON" {
		t.Fatalf("key() = %q, want %q", got, "CORE_HORIZON")
	}
	// nested prefix
	coreSeg := core.Prefix("SEGMENT_")
	if got := coreSeg.key("WORKERS"); got != "CORE_SEGMENT_WORKERS" {
		t.Fatalf("nested key() = %q, want %q", got, "CORE_SEGMENT_WORKERS")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  churnscope ")
	got := c.MustString("NAME")
	if got != "churnscope" {
		t.Fatalf("MustString = %q, want %q", got, "churnscope")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_WORKERS", "  8 ")
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want %d", got, 8)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("R_")
	t.Setenv("R_A", "1")
	t.Setenv("R_B", "2")
	kit.MustNotPanic(t, func() { c.Require("A", "B") })
	kit.MustPanic(t, func() { c.Require("A", "MISSING") })
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayString("NAME", "fallback"); got != "fallback" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("M_NAME", " set ")
	if got := c.MayString("NAME", "fallback"); got != "set" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayInt("N", 42); got != 42 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("M_N", "7")
	if got := c.MayInt("N", 42); got != 7 {
		t.Fatalf("MayInt = %d", got)
	}
	t.Setenv("M_N", "seven")
	if got := c.MayInt("N", 42); got != 42 {
		t.Fatalf("MayInt invalid should fall back, got %d", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("M_")
	if c.MayBool("ON", false) {
		t.Fatalf("MayBool default broken")
	}
	t.Setenv("M_ON", "true")
	if !c.MayBool("ON", false) {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("M_ON", "junk")
	if !c.MayBool("ON", true) {
		t.Fatalf("MayBool invalid should fall back")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayDuration("D", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("M_D", "250ms")
	if got := c.MayDuration("D", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	t.Setenv("M_D", "forever")
	if got := c.MayDuration("D", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid should fall back, got %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("M_")
	def := []string{"release", "beta"}
	got := c.MayCSV("CHANNELS", def)
	if len(got) != 2 || got[0] != "release" {
		t.Fatalf("MayCSV default = %v", got)
	}
	t.Setenv("M_CHANNELS", " nightly , aurora ,")
	got = c.MayCSV("CHANNELS", def)
	if len(got) != 2 || got[0] != "nightly" || got[1] != "aurora" {
		t.Fatalf("MayCSV = %v", got)
	}
}

func TestMayWeekday(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayWeekday("ANCHOR", time.Saturday); got != time.Saturday {
		t.Fatalf("MayWeekday default = %v", got)
	}
	t.Setenv("M_ANCHOR", "Sunday")
	if got := c.MayWeekday("ANCHOR", time.Saturday); got != time.Sunday {
		t.Fatalf("MayWeekday = %v", got)
	}
	t.Setenv("M_ANCHOR", "caturday")
	kit.MustPanic(t, func() { _ = c.MayWeekday("ANCHOR", time.Saturday) })
}
