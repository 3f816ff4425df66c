package util

import "testing"

func TestGetEnvFloat_ParsesValue(t *testing.T) {
	t.Setenv("TEST_WEIGHT", "0.7")
	if got := GetEnvFloat("TEST_WEIGHT", 0.5); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
}

func TestGetEnvFloat_DefaultWhenMissing(t *testing.T) {
	if got := GetEnvFloat("TEST_WEIGHT_UNSET_KEY", 0.3); got != 0.3 {
		t.Fatalf("expected default 0.3, got %v", got)
	}
}

func TestGetEnvFloat_DefaultOnGarbage(t *testing.T) {
	t.Setenv("TEST_WEIGHT", "half")
	if got := GetEnvFloat("TEST_WEIGHT", 0.5); got != 0.5 {
		t.Fatalf("expected default 0.5, got %v", got)
	}
}

func TestGetEnvNumeric_WholeNumberDefault(t *testing.T) {
	if got := GetEnvNumeric("TEST_LIMIT_UNSET_KEY", 100); got != 100 {
		t.Fatalf("expected default 100, got %v", got)
	}

	t.Setenv("TEST_LIMIT", "25")
	if got := GetEnvNumeric("TEST_LIMIT", 100); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}

func TestGetEnvBool_ParsesOnlyTrueFalse(t *testing.T) {
	t.Setenv("TEST_FLAG", "true")
	if !GetEnvBool("TEST_FLAG", false) {
		t.Fatal("expected true")
	}

	t.Setenv("TEST_FLAG", "yes")
	if GetEnvBool("TEST_FLAG", false) {
		t.Fatal("expected default false for unparseable value")
	}
}

func TestGetEnvString_DefaultWhenMissing(t *testing.T) {
	if got := GetEnvString("TEST_PATH_UNSET_KEY", "migrations"); got != "migrations" {
		t.Fatalf("expected default, got %q", got)
	}
}
