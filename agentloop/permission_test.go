package agentloop

import "testing"

func TestDefaultClassifierBlocksDangerousShell(t *testing.T) {
	cases := []string{
		"mkfs.ext4 /dev/sda1",
		":(){ :|:& };:",
		"chmod -R 777 /",
		"shutdown -h now",
	}
	for _, cmd := range cases {
		got := DefaultClassifier("shell", map[string]interface{}{"command": cmd})
		if got != SafetyBlocked {
			t.Errorf("classify(%q) = %v, want SafetyBlocked", cmd, got)
		}
	}
}

func TestDefaultClassifierConfirmsRiskyShell(t *testing.T) {
	cases := []string{"rm -rf /tmp/x", "git push --force", "sudo apt-get update", "curl http://example.com"}
	for _, cmd := range cases {
		got := DefaultClassifier("shell", map[string]interface{}{"command": cmd})
		if got != SafetyConfirm {
			t.Errorf("classify(%q) = %v, want SafetyConfirm", cmd, got)
		}
	}
}

func TestDefaultClassifierAllowsOrdinaryShell(t *testing.T) {
	got := DefaultClassifier("shell", map[string]interface{}{"command": "ls -la"})
	if got != SafetyAllow {
		t.Errorf("classify(ls -la) = %v, want SafetyAllow", got)
	}
}

func TestDefaultClassifierConfirmsProtectedPathWrite(t *testing.T) {
	got := DefaultClassifier("write_file", map[string]interface{}{"file_path": "/etc/hosts"})
	if got != SafetyConfirm {
		t.Errorf("classify(write /etc/hosts) = %v, want SafetyConfirm", got)
	}
}

func TestDefaultClassifierAllowsOrdinaryWrite(t *testing.T) {
	got := DefaultClassifier("write_file", map[string]interface{}{"file_path": "/home/user/project/a.go"})
	if got != SafetyAllow {
		t.Errorf("classify(write a.go) = %v, want SafetyAllow", got)
	}
}

func TestResolvePermissionBlockedNeverConsultsCallback(t *testing.T) {
	called := false
	fn := func(string, string, map[string]interface{}) PermissionDecision {
		called = true
		return Allow()
	}
	decision := resolvePermission(DefaultClassifier, fn, "shell", "c1", map[string]interface{}{"command": "shutdown now"})
	if called {
		t.Error("PermissionFunc must not be consulted for a blocked call")
	}
	if decision.Allowed() {
		t.Error("blocked call must deny")
	}
}

func TestResolvePermissionNilFuncDefaultsAllow(t *testing.T) {
	decision := resolvePermission(nil, nil, "read_file", "c1", nil)
	if !decision.Allowed() {
		t.Error("nil classifier and nil PermissionFunc should default to allow")
	}
}
