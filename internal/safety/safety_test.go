package safety

import (
	"context"
	"testing"
)

func TestManager_RequiresConfirmation(t *testing.T) {
	m := NewManager(nil)
	cases := map[string]bool{
		"delete my last email":       true,
		"send a message to Sam":      true,
		"what's the weather today":   false,
		"summarize my calendar":      false,
		"remove the duplicate file":  true,
		"wipe the staging database":  true,
		"pay the electricity bill":   true,
		"run rm -rf on the tmp dir":  true,
		"show my recent transfers":   false,
		"who is the current senator": false,
	}
	for command, want := range cases {
		if got := m.RequiresConfirmation(command); got != want {
			t.Errorf("RequiresConfirmation(%q) = %v, want %v", command, got, want)
		}
	}
}

func TestManager_SetPatternsReplacesDefaults(t *testing.T) {
	m := NewManager(nil)
	if err := m.SetPatterns([]string{`\bdeploy\b`}); err != nil {
		t.Fatalf("SetPatterns: %v", err)
	}
	if !m.RequiresConfirmation("deploy to production") {
		t.Error("expected custom pattern to match")
	}
	if m.RequiresConfirmation("delete my last email") {
		t.Error("expected default patterns to be replaced")
	}
}

func TestManager_SetPatternsRejectsInvalidRegexp(t *testing.T) {
	m := NewManager(nil)
	if err := m.SetPatterns([]string{`(`}); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
	if !m.RequiresConfirmation("delete my last email") {
		t.Error("expected the default list to survive a failed SetPatterns")
	}
}

func TestManager_Confirm_UsesConfiguredConfirmer(t *testing.T) {
	m := NewManager(func(ctx context.Context, command string) (bool, error) {
		return command == "send the email", nil
	})

	ok, err := m.Confirm(context.Background(), "send the email")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !ok {
		t.Error("expected confirmation to approve")
	}

	ok, err = m.Confirm(context.Background(), "delete the database")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ok {
		t.Error("expected confirmation to deny")
	}
}
