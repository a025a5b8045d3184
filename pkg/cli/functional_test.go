package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/funvibe/matchcore/internal/config"
)

// TestFunctional runs every source file under testdata/functional that has
// a .want file next to it. The .want file starts with the command line
// (`$ check`) and the exit code (`exit 1`); every following line must
// appear in the output, in order.
func TestFunctional(t *testing.T) {
	dir := filepath.Join("testdata", "functional")
	var testFiles []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		for _, ext := range config.SourceFileExtensions {
			if strings.HasSuffix(path, ext) {
				if _, err := os.Stat(strings.TrimSuffix(path, ext) + ".want"); err == nil {
					testFiles = append(testFiles, path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", dir, err)
	}
	if len(testFiles) == 0 {
		t.Skip("no test files with .want found")
	}

	for _, testFile := range testFiles {
		testFile := testFile
		name := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))
		t.Run(name, func(t *testing.T) {
			absPath, err := filepath.Abs(testFile)
			if err != nil {
				t.Fatal(err)
			}
			wantBytes, err := os.ReadFile(strings.TrimSuffix(testFile, filepath.Ext(testFile)) + ".want")
			if err != nil {
				t.Fatal(err)
			}
			args, wantCode, wantLines := parseWant(t, string(wantBytes))

			cfgPath := filepath.Join(t.TempDir(), "matchc.yaml")
			if err := os.WriteFile(cfgPath, []byte("workers: 1\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			full := append([]string{args[0], "-config", cfgPath}, args[1:]...)
			full = append(full, absPath)

			var stdout, stderr bytes.Buffer
			code := Main(context.Background(), full, strings.NewReader(""), &stdout, &stderr)
			got := stdout.String() + stderr.String()
			got = strings.ReplaceAll(got, filepath.Dir(absPath)+string(filepath.Separator), "")
			got = strings.ReplaceAll(got, "\r\n", "\n")

			if code != wantCode {
				t.Errorf("exit %d, want %d\n%s", code, wantCode, got)
			}
			rest := got
			for _, line := range wantLines {
				i := strings.Index(rest, line)
				if i < 0 {
					t.Fatalf("output lacks %q after the previous lines\n--- got ---\n%s", line, got)
				}
				rest = rest[i+len(line):]
			}
		})
	}
}

func parseWant(t *testing.T, want string) ([]string, int, []string) {
	t.Helper()
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(want, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "$ ") || !strings.HasPrefix(lines[1], "exit ") {
		t.Fatalf("want file must start with `$ <command>` and `exit <code>`")
	}
	code, err := strconv.Atoi(strings.TrimPrefix(lines[1], "exit "))
	if err != nil {
		t.Fatalf("bad exit line %q", lines[1])
	}
	return strings.Fields(strings.TrimPrefix(lines[0], "$ ")), code, lines[2:]
}
