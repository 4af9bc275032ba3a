package gitdiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse_HunkLines(t *testing.T) {
	t.Parallel()

	input := `diff --git a/app/views.py b/app/views.py
index 1234567..abcdefg 100644
--- a/app/views.py
+++ b/app/views.py
@@ -10,4 +10,5 @@ class ReportView(View):
     def get(self, request):
-        data = load()
+        data = load(request.user)
+        audit(request)
         return render(data)
 
`

	p := gitdiff.NewParser()

	diff, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "app/views.py", f.Path())
	require.Len(t, f.Hunks, 1)

	h := f.Hunks[0]
	assert.Equal(t, 10, h.OldStart)
	assert.Equal(t, 4, h.OldCount)
	assert.Equal(t, 10, h.NewStart)
	assert.Equal(t, 5, h.NewCount)
	assert.Equal(t, "class ReportView(View):", h.Section)

	want := []struct {
		typ     devq.LineType
		oldNum  int
		newNum  int
		content string
	}{
		{devq.LineContext, 10, 10, "    def get(self, request):\n"},
		{devq.LineDeleted, 11, 0, "        data = load()\n"},
		{devq.LineAdded, 0, 11, "        data = load(request.user)\n"},
		{devq.LineAdded, 0, 12, "        audit(request)\n"},
		{devq.LineContext, 12, 13, "        return render(data)\n"},
		{devq.LineContext, 13, 14, "\n"},
	}
	require.Len(t, h.Lines, len(want))
	for i, w := range want {
		assert.Equal(t, w.typ, h.Lines[i].Type, "line %d type", i)
		assert.Equal(t, w.oldNum, h.Lines[i].OldLineNum, "line %d old number", i)
		assert.Equal(t, w.newNum, h.Lines[i].NewLineNum, "line %d new number", i)
		assert.Equal(t, w.content, h.Lines[i].Content, "line %d content", i)
	}

	added, deleted := f.Stats()
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, deleted)
}

func TestParser_Parse_FileOperations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		op       devq.FileOp
		oldPath  string
		newPath  string
		binary   bool
		hunks    int
		wantPath string
	}{
		{
			name: "added",
			input: `diff --git a/new.py b/new.py
new file mode 100644
index 0000000..1234567
--- /dev/null
+++ b/new.py
@@ -0,0 +1,2 @@
+import sys
+print(sys.argv)
`,
			op: devq.FileAdded, newPath: "new.py", hunks: 1, wantPath: "new.py",
		},
		{
			name: "deleted",
			input: `diff --git a/old.py b/old.py
deleted file mode 100644
index 1234567..0000000
--- a/old.py
+++ /dev/null
@@ -1 +0,0 @@
-x = 1
`,
			op: devq.FileDeleted, oldPath: "old.py", hunks: 1, wantPath: "old.py",
		},
		{
			name: "renamed",
			input: `diff --git a/lib/a.py b/lib/b.py
similarity index 100%
rename from lib/a.py
rename to lib/b.py
`,
			op: devq.FileRenamed, oldPath: "lib/a.py", newPath: "lib/b.py", wantPath: "lib/b.py",
		},
		{
			name: "copied",
			input: `diff --git a/conf.py b/conf_test.py
similarity index 100%
copy from conf.py
copy to conf_test.py
`,
			op: devq.FileCopied, oldPath: "conf.py", newPath: "conf_test.py", wantPath: "conf_test.py",
		},
		{
			name: "binary",
			input: `diff --git a/logo.png b/logo.png
index 1234567..abcdefg 100644
Binary files a/logo.png and b/logo.png differ
`,
			op: devq.FileModified, oldPath: "logo.png", newPath: "logo.png", binary: true, wantPath: "logo.png",
		},
		{
			name: "mode change only",
			input: `diff --git a/run.sh b/run.sh
old mode 100644
new mode 100755
`,
			op: devq.FileModified, oldPath: "run.sh", newPath: "run.sh", wantPath: "run.sh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := gitdiff.NewParser()

			diff, err := p.Parse(strings.NewReader(tt.input))

			require.NoError(t, err)
			require.Len(t, diff.Files, 1)
			f := diff.Files[0]
			assert.Equal(t, tt.op, f.Operation)
			assert.Equal(t, tt.oldPath, f.OldPath)
			assert.Equal(t, tt.newPath, f.NewPath)
			assert.Equal(t, tt.binary, f.IsBinary)
			assert.Len(t, f.Hunks, tt.hunks)
			assert.Equal(t, tt.wantPath, f.Path())
		})
	}
}

func TestParser_Parse_KeepsFileOrder(t *testing.T) {
	t.Parallel()

	input := `diff --git a/z.py b/z.py
index 1234567..abcdefg 100644
--- a/z.py
+++ b/z.py
@@ -1 +1 @@
-a = 1
+a = 2
diff --git a/a.py b/a.py
new file mode 100644
index 0000000..1234567
--- /dev/null
+++ b/a.py
@@ -0,0 +1 @@
+b = 1
`

	p := gitdiff.NewParser()

	diff, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, diff.Files, 2)
	assert.Equal(t, "z.py", diff.Files[0].Path())
	assert.Equal(t, "a.py", diff.Files[1].Path())
}

func TestParser_Parse_NoNewlineMarker(t *testing.T) {
	t.Parallel()

	input := `diff --git a/VERSION b/VERSION
index 1234567..abcdefg 100644
--- a/VERSION
+++ b/VERSION
@@ -1 +1 @@
-1.0.0
\ No newline at end of file
+1.1.0
\ No newline at end of file
`

	p := gitdiff.NewParser()

	diff, err := p.Parse(strings.NewReader(input))

	require.NoError(t, err)
	lines := diff.Files[0].Hunks[0].Lines
	require.Len(t, lines, 2)
	assert.True(t, lines[0].NoNewline)
	assert.True(t, lines[1].NoNewline)
	assert.Equal(t, "1.1.0", diff.Files[0].Reconstruct())
}

func TestParser_Parse_BlankInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "\n  \n"} {
		p := gitdiff.NewParser()

		diff, err := p.Parse(strings.NewReader(input))

		require.NoError(t, err)
		assert.Empty(t, diff.Files)
	}
}

func TestParser_Parse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "incomplete git header", input: "diff --git a/file.py\n@@ -1,1 +1,1 @@ incomplete header\n"},
		{name: "prose", input: "this is not a diff\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := gitdiff.NewParser()

			diff, err := p.Parse(strings.NewReader(tt.input))

			var malformed *devq.MalformedDiffError
			require.ErrorAs(t, err, &malformed)
			assert.Nil(t, diff)
		})
	}
}
