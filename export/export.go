package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

// Exporter ...
type Exporter struct {
	cmdFactory   command.Factory
	pathModifier pathutil.PathModifier
}

// NewExporter ...
func NewExporter(cmdFactory command.Factory) Exporter {
	return Exporter{
		cmdFactory:   cmdFactory,
		pathModifier: pathutil.NewPathModifier(),
	}
}

// ExportOutput is used for exposing values for other steps.
// Regular env vars are isolated between steps, so instead of calling `os.Setenv()`, use this to explicitly expose
// a value for subsequent steps.
func (e *Exporter) ExportOutput(key, value string) error {
	cmd := e.cmdFactory.Create("envman", []string{"add", "--key", key, "--value", value}, nil)
	return runExport(cmd)
}

// ExportOutputList exports the values as one newline separated output.
func (e *Exporter) ExportOutputList(key string, values []string) error {
	return e.ExportOutput(key, strings.Join(values, "\n"))
}

// ExportOutputFileContent writes content to dst and exports the absolute path of dst.
func (e *Exporter) ExportOutputFileContent(content, dst, envKey string) error {
	absDst, err := e.pathModifier.AbsPath(dst)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(absDst), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(absDst, []byte(content), 0644); err != nil {
		return err
	}

	return e.ExportOutput(envKey, absDst)
}

func runExport(cmd command.Command) error {
	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return fmt.Errorf("exporting output with envman failed: %s, output: %s", err, out)
	}
	return nil
}
