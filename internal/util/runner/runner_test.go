package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunner_ValidateParams(t *testing.T) {
	tests := []struct {
		name    string
		runner  Runner
		wantErr string
	}{
		{"empty executable", Runner{}, "executable path is empty"},
		{"valid", Runner{RunString: "/bin/echo", Params: []string{"/C", "C:/work/cmd.xml"}}, ""},
		{"ampersand in path", Runner{RunString: "/bin/echo", Params: []string{"/C", `C:\R&D\cmd.xml`}}, ""},
		{"semicolon and pipe in path", Runner{RunString: "/bin/echo", Params: []string{"/work/a;b|c/cmd.xml"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.runner.validateParams()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunner_RunCommand_Success(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteScript(t, dir, "ok.sh", `echo "args: $1 $2"; echo "warn" >&2`)

	r := &Runner{RunString: script, Params: []string{"/C", "cmd.xml"}, WorkDir: dir}
	out, err := r.RunCommand(context.Background(), logging.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, 0, r.ExitCode)
	assert.Contains(t, string(out), "args: /C cmd.xml")
	assert.Contains(t, string(out), "warn")
	assert.Empty(t, r.Params, "параметры очищаются после запуска")
}

func TestRunner_RunCommand_MetacharactersPassedVerbatim(t *testing.T) {
	dir := t.TempDir()
	script := testutil.WriteScript(t, dir, "args.sh", `printf '%s\n' "$2"`)

	arg := "/work/R&D;x|y/cmd.xml"
	r := &Runner{RunString: script, Params: []string{"/C", arg}}
	out, err := r.RunCommand(context.Background(), logging.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, arg, strings.TrimSpace(string(out)))
}

func TestRunner_RunCommand_ExitCode(t *testing.T) {
	script := testutil.WriteScript(t, t.TempDir(), "fail.sh", `echo "license expired"; exit 3`)

	r := &Runner{RunString: script}
	out, err := r.RunCommand(context.Background(), logging.NewNopLogger())

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, r.ExitCode)
	assert.Contains(t, string(out), "license expired")
}

func TestRunner_RunCommand_DecodesConsole(t *testing.T) {
	// "Привет" в cp1251
	script := testutil.WriteScript(t, t.TempDir(), "cp1251.sh", `printf '\317\360\350\342\345\362'`)

	r := &Runner{RunString: script, Encoding: "cp1251"}
	out, err := r.RunCommand(context.Background(), logging.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, "Привет", string(out))
}

func TestRunner_RunCommand_ContextDeadline(t *testing.T) {
	script := testutil.WriteScript(t, t.TempDir(), "hang.sh", `exec sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	r := &Runner{RunString: script}
	_, err := r.RunCommand(ctx, logging.NewNopLogger())

	require.Error(t, err)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunner_RunCommand_Env(t *testing.T) {
	script := testutil.WriteScript(t, t.TempDir(), "env.sh", `echo "$APK_TEST_VALUE"`)

	r := &Runner{RunString: script, Env: []string{"APK_TEST_VALUE=42", "broken"}}
	out, err := r.RunCommand(context.Background(), logging.NewNopLogger())

	require.NoError(t, err)
	assert.Equal(t, "42", strings.TrimSpace(string(out)))
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "cp1251", "windows-1251", "cp866", "ibm866"} {
		_, err := LookupEncoding(name)
		assert.NoError(t, err, name)
	}
	_, err := LookupEncoding("klingon")
	assert.Error(t, err)
}

func TestTrimOut(t *testing.T) {
	assert.Equal(t, "short", TrimOut([]byte("short")))

	long := []byte(strings.Repeat("a", 1500) + strings.Repeat("b", 1500))
	trimmed := TrimOut(long)
	assert.True(t, strings.HasPrefix(trimmed, strings.Repeat("a", 1020)))
	assert.True(t, strings.HasSuffix(trimmed, strings.Repeat("b", 1020)))
	assert.Contains(t, trimmed, "********")
}

func TestTrimOut_KeepsRunesWhole(t *testing.T) {
	// кириллица занимает 2 байта, 1020 и len-1020 попадают в середину руны
	long := []byte("x" + strings.Repeat("ж", 1500) + "y")
	trimmed := TrimOut(long)

	assert.True(t, utf8.ValidString(trimmed))
	assert.True(t, strings.HasPrefix(trimmed, "x"+strings.Repeat("ж", 509)))
	assert.True(t, strings.HasSuffix(trimmed, strings.Repeat("ж", 509)+"y"))
}
