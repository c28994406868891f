package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " debug ")
	lc := New().Prefix("LOG_")
	if got := lc.Get("LEVEL", "info"); got != "debug" {
		t.Fatalf("Get = %q", got)
	}
	if got := lc.Get("MISSING", "info"); got != "info" {
		t.Fatalf("Get default = %q", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("RB_")
	for k, v := range map[string]string{"T1": "true", "T2": "1", "T3": "YES", "T4": " on ", "F1": "false", "F2": "nah"} {
		t.Setenv("RB_"+k, v)
	}
	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"T1", false, true},
		{"T2", false, true},
		{"T3", false, true},
		{"T4", false, true},
		{"F1", true, false},
		{"F2", true, false},
		{"UNSET", true, true},
	}
	for _, tt := range tests {
		if got := c.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("RI_")
	t.Setenv("RI_OK", " 12 ")
	t.Setenv("RI_NEG", "-3")
	t.Setenv("RI_BAD", "12x")
	if got := c.GetInt("OK", 0); got != 12 {
		t.Fatalf("GetInt = %d", got)
	}
	if got := c.GetInt("NEG", 5); got != 5 {
		t.Fatalf("GetInt negative = %d", got)
	}
	if got := c.GetInt("BAD", 5); got != 5 {
		t.Fatalf("GetInt bad = %d", got)
	}
	if got := c.GetInt("UNSET", 9); got != 9 {
		t.Fatalf("GetInt unset = %d", got)
	}
}
