// Package safety gates risky commands behind an explicit confirmation
// step before the dispatcher lets a skill act on them.
package safety

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"nerva/internal/logging"
)

var log = logging.New("safety")

// DefaultRiskyPatterns matches verbs that commit an irreversible or
// externally visible side effect. A command matching none of these is
// let through without confirmation.
var DefaultRiskyPatterns = []string{
	`\bdelete\b`, `\bremove\b`, `\bwipe\b`, `\bsend\b`, `\bpay\b`,
	`\btransfer\b`, `\bpurchase\b`, `\bsubmit\b`, `\bpublish\b`,
	`rm\s+-rf`,
}

// Confirmer asks whether a risky command should proceed. The default
// implementation prompts on stdin/stdout; voice and MCP frontends can
// supply their own (a TTS prompt plus ASR confirmation, an MCP
// elicitation round-trip, and so on).
type Confirmer func(ctx context.Context, command string) (bool, error)

// Manager is the safety gate the dispatcher consults before routing a
// command whose route is allowed to mutate external state.
type Manager struct {
	confirm  Confirmer
	patterns []*regexp.Regexp
}

// NewManager returns a Manager using confirm to gate risky commands,
// with DefaultRiskyPatterns as its verb list. A nil confirm defaults
// to a blocking stdin y/N prompt.
func NewManager(confirm Confirmer) *Manager {
	if confirm == nil {
		confirm = StdinConfirmer
	}
	m := &Manager{confirm: confirm}
	if err := m.SetPatterns(DefaultRiskyPatterns); err != nil {
		panic(err) // the defaults are compile-time constants
	}
	return m
}

// SetPatterns replaces the risky-verb pattern list. Patterns are
// case-insensitive regular expressions; an invalid pattern leaves the
// current list untouched.
func (m *Manager) SetPatterns(patterns []string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return fmt.Errorf("safety: compile pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	m.patterns = compiled
	return nil
}

// RequiresConfirmation reports whether command matches a risky verb
// pattern.
func (m *Manager) RequiresConfirmation(command string) bool {
	for _, re := range m.patterns {
		if re.MatchString(command) {
			return true
		}
	}
	return false
}

// Confirm asks the configured Confirmer whether command should
// proceed.
func (m *Manager) Confirm(ctx context.Context, command string) (bool, error) {
	ok, err := m.confirm(ctx, command)
	if err != nil {
		return false, fmt.Errorf("safety: confirm: %w", err)
	}
	log.Info("safety confirmation decided", "command", command, "approved", ok)
	return ok, nil
}

// StdinConfirmer prompts on stdout and reads a y/N answer from stdin.
// It blocks until a line is available or ctx is cancelled.
func StdinConfirmer(ctx context.Context, command string) (bool, error) {
	fmt.Printf("[Safety] Confirm action %q? (y/N): ", command)

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		done <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return false, r.err
		}
		reply := strings.ToLower(strings.TrimSpace(r.line))
		return reply == "y" || reply == "yes", nil
	}
}
