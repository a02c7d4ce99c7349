package srcmon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/testutil"
)

// fakeAnalyzer пишет отчёт по пути из <export_file> командного файла.
const fakeAnalyzer = `script="$2"
report=$(sed -n 's:.*<export_file>\(.*\)</export_file>.*:\1:p' "$script")
echo "<metrics/>" > "$report"
echo "analyzed $script"`

type recordingCollector struct {
	mu         sync.Mutex
	exclusions map[string]int
	outcomes   []string
}

func (c *recordingCollector) RecordCommandStart(_, _ string) {}

func (c *recordingCollector) RecordCommandEnd(_, _ string, _ time.Duration, _ bool) {}

func (c *recordingCollector) Push(context.Context) error { return nil }

func (c *recordingCollector) RecordExclusions(target string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exclusions == nil {
		c.exclusions = map[string]int{}
	}
	c.exclusions[target] = count
}

func (c *recordingCollector) RecordToolRun(_, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}

type driverFixture struct {
	root      string
	toolDir   string
	reportDir string
	ws        *workspace.Workspace
	collector *recordingCollector
}

func newDriverFixture(t *testing.T, analyzer string) *driverFixture {
	t.Helper()
	root := t.TempDir()
	f := &driverFixture{
		root:      root,
		toolDir:   t.TempDir(),
		reportDir: filepath.Join(root, "target", "metrics"),
		collector: &recordingCollector{},
	}
	f.ws = newWorkspace(t, root,
		workspace.Project{Name: "A"},
		workspace.Project{Name: "B", Test: true},
		workspace.Project{Name: "C"},
	)
	if analyzer != "" {
		testutil.WriteScript(t, f.toolDir, "SourceMonitor.exe", analyzer)
	}
	return f
}

func (f *driverFixture) driver(timeout time.Duration) *Driver {
	opts := Options{
		ExecutableDir:  f.toolDir,
		Executable:     "SourceMonitor.exe",
		SourceDir:      f.root,
		ReportDir:      f.reportDir,
		ReportFileName: "metrics-report.xml",
		Checkpoint:     f.ws.Version,
		Language:       "C#",
		Attempts:       1,
		AttemptTimeout: timeout,
	}.WithExcludedExtensions("*.Designer.cs")
	return &Driver{Options: opts, Logger: logging.NewNopLogger(), Metrics: f.collector}
}

func TestDriver_Run_Solution(t *testing.T) {
	f := newDriverFixture(t, fakeAnalyzer)
	files := ReportPaths(f.reportDir, "metrics-report.xml")
	require.NoError(t, os.MkdirAll(f.reportDir, 0o750))
	require.NoError(t, os.WriteFile(files.ProjectState, []byte("old checkpoint"), 0o600))

	report, err := f.driver(10*time.Second).Run(context.Background(), SolutionTarget{Workspace: f.ws, Skip: workspace.ParseSkipList("C")})

	require.NoError(t, err)
	assert.Equal(t, []State{StatePrepared, StateScriptWritten, StateLaunched, StateCompleted}, report.States)
	assert.True(t, report.Succeeded())
	assert.Equal(t, []string{"B", "C"}, report.Excluded)
	assert.Equal(t, 0, report.ExitCode)
	assert.True(t, report.ReportFound)
	assert.Equal(t, files, report.Files)
	assert.NoFileExists(t, files.ProjectState, "файл состояния удаляется перед запуском")

	script, err := os.ReadFile(report.ScriptPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.reportDir, "sourcemonitor-command.xml"), report.ScriptPath)
	assert.Contains(t, string(script), "<source_subtree>B</source_subtree>")
	assert.Contains(t, string(script), "<source_subtree>C</source_subtree>")
	assert.Contains(t, string(script), "<checkpoint_name>1.2.0</checkpoint_name>")

	assert.Equal(t, map[string]int{"W": 2}, f.collector.exclusions)
	assert.Equal(t, []string{OutcomeCompleted}, f.collector.outcomes)
}

func TestDriver_Run_Project(t *testing.T) {
	f := newDriverFixture(t, fakeAnalyzer)
	project, ok := f.ws.Project("A")
	require.True(t, ok)

	report, err := f.driver(10*time.Second).Run(context.Background(), ProjectTarget{Project: project})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.reportDir, "A", "metrics-report.xml"), report.Files.Report)
	assert.FileExists(t, report.Files.Report)
	assert.Empty(t, report.Excluded)

	script, err := os.ReadFile(report.ScriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(script), "<source_directory>"+project.Dir+"</source_directory>")
	assert.NotContains(t, string(script), "source_subdirectory_list")
}

func TestDriver_Run_ShellMetacharactersInPaths(t *testing.T) {
	// в командном файле "&" экранирован как &amp;
	f := newDriverFixture(t, `script="$2"
report=$(sed -n 's:.*<export_file>\(.*\)</export_file>.*:\1:p' "$script" | sed 's/&amp;/\&/g')
echo "<metrics/>" > "$report"`)
	root := filepath.Join(t.TempDir(), "R&D;ops|2024")
	f.root = root
	f.reportDir = filepath.Join(root, "target", "metrics")
	f.ws = newWorkspace(t, root,
		workspace.Project{Name: "A"},
		workspace.Project{Name: "B", Test: true},
	)

	report, err := f.driver(10*time.Second).Run(context.Background(), SolutionTarget{Workspace: f.ws})

	require.NoError(t, err)
	assert.Equal(t, []State{StatePrepared, StateScriptWritten, StateLaunched, StateCompleted}, report.States)
	assert.Equal(t, 0, report.ExitCode)
	assert.True(t, report.ReportFound)
	assert.FileExists(t, filepath.Join(f.reportDir, "metrics-report.xml"))
}

func TestDriver_Run_ProjectsShareExtraction(t *testing.T) {
	f := newDriverFixture(t, "")
	bundle := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "metrics"), 0o750))
	testutil.WriteScript(t, filepath.Join(bundle, "metrics"), "SourceMonitor.exe", fakeAnalyzer)

	d := f.driver(10 * time.Second)
	d.Options.ExecutableDir = ""
	d.Extractor = &BundleExtractor{BundleDir: bundle, RuntimeDir: t.TempDir()}

	for i, name := range []string{"A", "C"} {
		project, ok := f.ws.Project(name)
		require.True(t, ok)

		report, err := d.Run(context.Background(), ProjectTarget{Project: project})

		require.NoError(t, err, name)
		assert.True(t, report.ReportFound, name)
		if i == 0 {
			// следующая цель использует уже распакованный SourceMonitor
			require.NoError(t, os.RemoveAll(bundle))
		}
	}
}

func TestDriver_Run_ToolNotFound(t *testing.T) {
	f := newDriverFixture(t, "")
	files := ReportPaths(f.reportDir, "metrics-report.xml")
	require.NoError(t, os.MkdirAll(f.reportDir, 0o750))
	require.NoError(t, os.WriteFile(files.Report, []byte("stale"), 0o600))

	d := f.driver(time.Second)
	d.Options.ExecutableDir = ""
	d.Extractor = &stubExtractor{dir: t.TempDir()}

	report, err := d.Run(context.Background(), SolutionTarget{Workspace: f.ws})

	var tnf *ToolNotFoundError
	require.True(t, errors.As(err, &tnf))
	assert.Equal(t, []State{StatePrepared, StateFailed}, report.States)
	assert.NoFileExists(t, filepath.Join(f.reportDir, "sourcemonitor-command.xml"), "командный файл не создаётся")
	assert.FileExists(t, files.Report, "работа с артефактами не начиналась")
	assert.Equal(t, []string{OutcomeNotFound}, f.collector.outcomes)
	assert.Nil(t, f.collector.exclusions)
}

func TestDriver_Run_ToolFails(t *testing.T) {
	f := newDriverFixture(t, `echo "fatal: license" >&2; exit 2`)
	files := ReportPaths(f.reportDir, "metrics-report.xml")
	require.NoError(t, os.MkdirAll(f.reportDir, 0o750))
	require.NoError(t, os.WriteFile(files.Report, []byte("stale"), 0o600))

	report, err := f.driver(10*time.Second).Run(context.Background(), SolutionTarget{Workspace: f.ws})

	var ete *ExternalToolExecutionError
	require.True(t, errors.As(err, &ete))
	assert.Equal(t, 2, ete.ExitCode)
	assert.Equal(t, "Metrics", ete.Label)
	assert.Equal(t, []State{StatePrepared, StateScriptWritten, StateLaunched, StateFailed}, report.States)
	assert.Equal(t, 2, report.ExitCode)
	assert.False(t, report.Succeeded())
	assert.NotEmpty(t, report.Error)
	assert.NoFileExists(t, files.Report, "устаревший отчёт не остаётся после неудачного запуска")
	assert.Equal(t, []string{OutcomeFailed}, f.collector.outcomes)
}

func TestDriver_Run_Timeout(t *testing.T) {
	f := newDriverFixture(t, `exec sleep 30`)

	_, err := f.driver(100*time.Millisecond).Run(context.Background(), SolutionTarget{Workspace: f.ws})

	assert.ErrorIs(t, err, ErrLaunchTimeout)
	assert.Equal(t, []string{OutcomeTimeout}, f.collector.outcomes)
}

func TestDriver_Run_ReportMissingAfterSuccess(t *testing.T) {
	f := newDriverFixture(t, `exit 0`)

	report, err := f.driver(10*time.Second).Run(context.Background(), SolutionTarget{Workspace: f.ws})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, report.State())
	assert.False(t, report.ReportFound)
}

func TestDriver_Run_CleanupFailure(t *testing.T) {
	f := newDriverFixture(t, fakeAnalyzer)
	files := ReportPaths(f.reportDir, "metrics-report.xml")
	require.NoError(t, os.MkdirAll(filepath.Join(files.Report, "locked"), 0o750))

	report, err := f.driver(10*time.Second).Run(context.Background(), SolutionTarget{Workspace: f.ws})

	var oce *OutputCleanupError
	require.True(t, errors.As(err, &oce))
	assert.Equal(t, []State{StatePrepared, StateFailed}, report.States)
	assert.NoFileExists(t, filepath.Join(f.reportDir, "sourcemonitor-command.xml"))
}

func TestDriver_Run_MalformedScript(t *testing.T) {
	f := newDriverFixture(t, fakeAnalyzer)
	d := f.driver(10 * time.Second)
	d.Options.Checkpoint = ""

	report, err := d.Run(context.Background(), SolutionTarget{Workspace: f.ws})

	var mse *MalformedScriptError
	require.True(t, errors.As(err, &mse))
	assert.Equal(t, []string{"checkpoint_name"}, mse.Missing)
	assert.Equal(t, StateFailed, report.State())
	assert.NoFileExists(t, report.ScriptPath)
}

func TestDriver_Preview(t *testing.T) {
	f := newDriverFixture(t, "")
	for _, name := range []string{"A/Order.cs", "A/Order.Designer.cs", "B/OrderTests.cs", "C/Readme.md"} {
		p := filepath.Join(f.root, filepath.FromSlash(name))
		require.NoError(t, os.WriteFile(p, []byte("//"), 0o600))
	}
	files := ReportPaths(f.reportDir, "metrics-report.xml")
	require.NoError(t, os.MkdirAll(f.reportDir, 0o750))
	require.NoError(t, os.WriteFile(files.Report, []byte("stale"), 0o600))

	preview, err := f.driver(time.Second).Preview(context.Background(), SolutionTarget{Workspace: f.ws})

	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, preview.Excluded)
	assert.Equal(t, files, preview.Files)
	assert.True(t, strings.HasPrefix(string(preview.Script), "<?xml"))
	assert.Equal(t, Inventory{Included: 1, ExcludedByDir: 1, ExcludedByGlob: 1}, preview.Inventory)
	assert.FileExists(t, files.Report, "preview ничего не удаляет")
	assert.NoFileExists(t, preview.ScriptPath)
}
