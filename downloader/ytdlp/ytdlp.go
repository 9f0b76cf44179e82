// Package ytdlp hands streaming-provider URLs to an external yt-dlp style client.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
)

// A Runner executes a shell command line.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner runs commands with sh -c, passing the client's output through.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

type Transfer struct {
	command string
	runner  Runner
	log     *zap.SugaredLogger
}

// New uses the configured client command, run by runner (ShellRunner if nil).
func New(config course_archiver.YtDlpConfig, runner Runner) *Transfer {
	command := config.Command
	if command == "" {
		command = course_archiver.DefaultYtDlpCommand
	}
	if runner == nil {
		runner = ShellRunner{}
	}
	return &Transfer{
		command: command,
		runner:  runner,
		log:     zap.S().Named("yt-dlp"),
	}
}

// Characters that stay special inside a double-quoted shell word.
var doubleQuoted = strings.NewReplacer(`\`, `\\`, `$`, `\$`, "`", "\\`", `"`, `\"`)

// Command builds the client invocation that saves url as <dir>/<title>.<ext>, the client choosing the extension.
// The output path is double-quoted and the URL single-quoted, so neither is expanded by the shell.
func (t *Transfer) Command(dir string, title string, url string) string {
	output := doubleQuoted.Replace(filepath.Join(dir, title) + ".%(ext)s")
	return fmt.Sprintf(`%s -o "%s" '%s'`, t.command, output, strings.ReplaceAll(url, `'`, `'\''`))
}

// Transfer runs the client once. Retrying is left to the client.
func (t *Transfer) Transfer(ctx context.Context, cur *download.Cursor, title string, url string) error {
	command := t.Command(cur.Dir(), title, url)
	t.log.Debugf("running: %s", command)
	if err := t.runner.Run(ctx, command); err != nil {
		return fmt.Errorf("%w: %s: %w", course_archiver.ErrTransfer, t.command, err)
	}
	return nil
}
