package diff_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/diff"
)

const sampleDiff = `diff --git a/src/a.go b/src/a.go
index 1111111..2222222 100644
--- a/src/a.go
+++ b/src/a.go
@@ -1,3 +1,4 @@
 package a
-var x = 1
+var x = 2
+var y = 3
 
diff --git a/docs/new.md b/docs/new.md
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/docs/new.md
@@ -0,0 +1,2 @@
+# Title
+body
diff --git a/old.txt b/old.txt
deleted file mode 100644
index 4444444..0000000
--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
diff --git a/lib/before.go b/lib/after.go
similarity index 90%
rename from lib/before.go
rename to lib/after.go
index 5555555..6666666 100644
--- a/lib/before.go
+++ b/lib/after.go
@@ -1,2 +1,2 @@
 package lib
-// old
+// new
`

func TestParse(t *testing.T) {
	got, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []analysis.FileChange{
		{Path: "src/a.go", Additions: 2, Deletions: 1, Status: "modified"},
		{Path: "docs/new.md", Additions: 2, Status: "added"},
		{Path: "lib/after.go", Additions: 1, Deletions: 1, Status: "renamed"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParseEmpty(t *testing.T) {
	got, err := diff.Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestFromGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "chore: initial")
	runGit(t, dir, "tag", "base")

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "commit", "-q", "-am", "feat: add lines")

	ctx := context.Background()
	changes, err := diff.FromGit(ctx, dir, "base", "HEAD")
	if err != nil {
		t.Fatalf("FromGit: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "a.txt" || changes[0].Additions != 2 {
		t.Errorf("changes = %+v", changes)
	}

	subjects, err := diff.CommitSubjects(ctx, dir, "base", "")
	if err != nil {
		t.Fatalf("CommitSubjects: %v", err)
	}
	if !reflect.DeepEqual(subjects, []string{"feat: add lines"}) {
		t.Errorf("subjects = %v", subjects)
	}

	if _, err := diff.FromGit(ctx, dir, "no-such-ref", ""); err == nil {
		t.Error("expected error for unknown ref")
	}
}
