package config

import "testing"

func TestPolicyDefaults(t *testing.T) {
	p := MustCompile(DefaultIgnoredPatterns)

	ignored := []string{
		"/project/node_modules",
		"/project/node_modules/package",
		"/project/.git/hooks",
		"/rust/project/target/debug",
		"/home/u/.cache",
		"/var/log/app.log",
	}
	for _, path := range ignored {
		if !p.IsIgnored(path) {
			t.Errorf("IsIgnored(%q) = false, want true", path)
		}
	}

	kept := []string{
		"/home/user/projects",
		"/usr/local/bin",
		"/home/u/targets",
		"/home/u/my.git.repo",
	}
	for _, path := range kept {
		if p.IsIgnored(path) {
			t.Errorf("IsIgnored(%q) = true, want false", path)
		}
	}
}

func TestPolicySegmentSemantics(t *testing.T) {
	p := MustCompile([]string{"/tmp/*"})

	if !p.IsIgnored("/tmp/scratch") {
		t.Error("* should match one segment")
	}
	if p.IsIgnored("/tmp/scratch/deeper") {
		t.Error("* should not cross a separator")
	}

	deep := MustCompile([]string{"/tmp/**"})
	if !deep.IsIgnored("/tmp/scratch/deeper") {
		t.Error("** should cross separators")
	}
}

func TestPolicyCaseSensitive(t *testing.T) {
	p := MustCompile([]string{"**/Build"})
	if p.IsIgnored("/src/build") {
		t.Error("matching should be case-sensitive")
	}
	if !p.IsIgnored("/src/Build") {
		t.Error("exact case should match")
	}
}

func TestPolicyMatchingPattern(t *testing.T) {
	p := MustCompile([]string{"**/dist", "**/.git"})

	pattern, ok := p.MatchingPattern("/repo/.git")
	if !ok || pattern != "**/.git" {
		t.Errorf("MatchingPattern = %q, %v; want **/.git", pattern, ok)
	}
	if _, ok := p.MatchingPattern("/repo/src"); ok {
		t.Error("no pattern should match /repo/src")
	}
}

func TestCompileInvalid(t *testing.T) {
	if _, err := Compile([]string{"ok/**", "[bad"}); err == nil {
		t.Error("Compile should reject an unclosed class")
	}
}

func TestNilPolicy(t *testing.T) {
	var p *Policy
	if p.IsIgnored("/anything") {
		t.Error("nil policy ignores nothing")
	}
	if p.Patterns() != nil {
		t.Error("nil policy has no patterns")
	}
}
