package activity

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func sampleCommits() []Commit {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	return []Commit{
		{Hash: "c4", Author: "dana", Time: base.Add(4 * time.Hour), Files: []string{"src/parser.rs", "src/cache.rs"}},
		{Hash: "c3", Author: "eli", Time: base.Add(3 * time.Hour), Files: []string{"src/parser.rs", "README.md", "src/parser.rs"}},
		{Hash: "c2", Author: "dana", Time: base.Add(2 * time.Hour), Files: []string{"src/cache.rs", "src/parser.rs"}},
		{Hash: "c1", Author: "eli", Time: base.Add(1 * time.Hour), Files: []string{"src/lib.rs", "src/parser.rs"}},
	}
}

func TestFromCommitsCounts(t *testing.T) {
	f := FromCommits(sampleCommits(), 3)

	tests := []struct {
		path string
		want int
	}{
		{"src/parser.rs", 3},
		{"src/cache.rs", 2},
		{"README.md", 1},
		{"src/lib.rs", 0}, // outside the window
		{"missing.rs", 0},
	}
	for _, tt := range tests {
		if got := f.Commits(tt.path); got != tt.want {
			t.Errorf("Commits(%q): expected %d, got %d", tt.path, tt.want, got)
		}
	}

	if all := FromCommits(sampleCommits(), 0); all.Commits("src/parser.rs") != 4 {
		t.Errorf("window 0 should count every commit, got %d", all.Commits("src/parser.rs"))
	}
}

func TestCoChanged(t *testing.T) {
	f := FromCommits(sampleCommits(), 1)

	got := f.CoChanged("src/parser.rs")
	want := []Pair{{"src/cache.rs", 2}, {"README.md", 1}, {"src/lib.rs", 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if len(f.CoChanged("nothing")) != 0 {
		t.Error("unknown path should have no partners")
	}
}

func TestRecent(t *testing.T) {
	f := FromCommits(sampleCommits(), 0)
	got := f.Recent(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Path != "src/parser.rs" || got[0].Commits != 4 || got[0].LastAuthor != "dana" {
		t.Errorf("unexpected first entry %+v", got[0])
	}
	if got[1].Path != "src/cache.rs" {
		t.Errorf("expected src/cache.rs second, got %s", got[1].Path)
	}
}

func TestNilFacts(t *testing.T) {
	var f *Facts
	if f.Commits("a") != 0 || f.CoChanged("a") != nil || f.Recent(3) != nil || f.Window() != 0 {
		t.Error("nil facts should report no activity")
	}
}

func TestParseLog(t *testing.T) {
	out := recordSep + "abc" + fieldSep + "Dana" + fieldSep + "1700000000" + fieldSep + "fix parser\n\nsrc/a.go\nsrc/b.go\n" +
		recordSep + "def" + fieldSep + "Eli" + fieldSep + "1690000000" + fieldSep + "init\n\nREADME.md\n"

	commits := ParseLog(out)
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	c := commits[0]
	if c.Hash != "abc" || c.Author != "Dana" || c.Subject != "fix parser" {
		t.Errorf("unexpected commit %+v", c)
	}
	if len(c.Files) != 2 || c.Files[1] != "src/b.go" {
		t.Errorf("unexpected files %v", c.Files)
	}
	if c.Time.Unix() != 1700000000 {
		t.Errorf("unexpected time %v", c.Time)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		out       string
		branch    string
		dirty     bool
		staged    int
		modified  int
		untracked int
	}{
		{"## main...origin/main [ahead 1]\n", "main", false, 0, 0, 0},
		{"## feature/x\n M src/a.go\n", "feature/x", true, 0, 1, 0},
		{"## No commits yet on trunk\n", "trunk", false, 0, 0, 0},
		{"## main\nA  new.go\nMM both.go\n?? scratch.txt\n?? notes/\n", "main", true, 2, 1, 2},
		{"## main\n?? only.txt\n", "main", false, 0, 0, 1},
	}
	for _, tt := range tests {
		st := parseStatus(tt.out)
		if st.Branch != tt.branch || st.Dirty != tt.dirty {
			t.Errorf("parseStatus(%q): got %+v", tt.out, st)
		}
		if st.Staged != tt.staged || st.Modified != tt.modified || st.Untracked != tt.untracked {
			t.Errorf("parseStatus(%q): counts staged=%d modified=%d untracked=%d", tt.out, st.Staged, st.Modified, st.Untracked)
		}
	}
}

func TestParseNumstat(t *testing.T) {
	out := "3\t1\tsrc/a.go\n-\t-\tlogo.png\n10\t0\tREADME.md\n"
	ins, del := parseNumstat(out)
	if ins != 13 || del != 1 {
		t.Errorf("expected +13 -1, got +%d -%d", ins, del)
	}
}

func TestHotDirectories(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	dirs := HotDirectories(sampleCommits(), base.Add(2*time.Hour), 0)
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directories, got %+v", dirs)
	}
	if dirs[0] != (DirActivity{Path: "src", Commits: 3}) || dirs[1] != (DirActivity{Path: ".", Commits: 1}) {
		t.Errorf("unexpected ranking %+v", dirs)
	}

	if dirs := HotDirectories(sampleCommits(), time.Time{}, 1); len(dirs) != 1 || dirs[0].Commits != 4 {
		t.Errorf("expected src with 4 commits, got %+v", dirs)
	}
	if dirs := HotDirectories(sampleCommits(), base.Add(24*time.Hour), 0); len(dirs) != 0 {
		t.Errorf("expected nothing after the last commit, got %+v", dirs)
	}
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0s ago"},
		{45 * time.Second, "45s ago"},
		{90 * time.Second, "1m ago"},
		{5 * time.Hour, "5h ago"},
		{50 * time.Hour, "2d ago"},
		{15 * 24 * time.Hour, "2w ago"},
	}
	for _, tt := range tests {
		if got := TimeAgo(tt.d); got != tt.want {
			t.Errorf("TimeAgo(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func gitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com"}, args...)...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	write := func(name, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	run("init", "-q", "-b", "main")
	write("src/a.go", "package src\n")
	write("src/b.go", "package src\n")
	run("add", ".")
	run("commit", "-q", "-m", "first")
	write("src/a.go", "package src\n\nfunc A() {}\n")
	run("commit", "-q", "-am", "second")
	return dir
}

func TestGitLog(t *testing.T) {
	dir := gitRepo(t)

	commits, err := GitLog(context.Background(), dir, 10)
	if err != nil {
		t.Fatalf("GitLog failed: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Subject != "second" || len(commits[0].Files) != 1 || commits[0].Files[0] != "src/a.go" {
		t.Errorf("unexpected newest commit %+v", commits[0])
	}

	f := FromCommits(commits, 10)
	if f.Commits("src/a.go") != 2 || f.Commits("src/b.go") != 1 {
		t.Errorf("unexpected counts a=%d b=%d", f.Commits("src/a.go"), f.Commits("src/b.go"))
	}

	st, err := GitStatus(context.Background(), dir)
	if err != nil {
		t.Fatalf("GitStatus failed: %v", err)
	}
	if st.Branch != "main" || st.Dirty {
		t.Errorf("unexpected status %+v", st)
	}

	if err := os.WriteFile(filepath.Join(dir, "src/b.go"), []byte("package src\n\nvar B = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	st, err = GitStatus(context.Background(), dir)
	if err != nil {
		t.Fatalf("GitStatus failed: %v", err)
	}
	if !st.Dirty || st.Staged != 0 || st.Modified != 1 || st.Untracked != 1 {
		t.Errorf("unexpected status after edits %+v", st)
	}
	ins, del, err := DiffStat(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiffStat failed: %v", err)
	}
	if ins != 2 || del != 0 {
		t.Errorf("expected +2 -0, got +%d -%d", ins, del)
	}
}

func TestGitLogNotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	_, err := GitLog(context.Background(), dir, 5)
	if !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("expected ErrNotGitRepo, got %v", err)
	}
}
