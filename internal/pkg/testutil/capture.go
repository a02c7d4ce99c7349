// Package testutil содержит общие утилиты для тестов.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// CaptureStdout выполняет fn, перехватывая stdout, и возвращает вывод.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err, "не удалось создать pipe для stdout")

	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	_ = w.Close() //nolint:errcheck // test helper pipe close

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err, "не удалось прочитать stdout")
	return buf.String()
}

// WriteScript создаёт исполняемый shell-скрипт dir/name с телом body.
// На Windows тест пропускается.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на windows")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) //nolint:gosec // test script
	return path
}
