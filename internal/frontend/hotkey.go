// Package frontend implements the stdin-hotkey, ambient-monitor, and
// voice-control surfaces that all funnel into a dispatcher.Dispatcher.
package frontend

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"nerva/internal/logging"
)

var log = logging.New("frontend")

// HotkeyHandler runs in response to a registered key.
type HotkeyHandler func(ctx context.Context) error

// HotkeyManager is a basic stdin-based hotkey watcher: each line typed
// at the prompt is looked up against the registered handlers.
type HotkeyManager struct {
	mu       sync.Mutex
	handlers map[string]HotkeyHandler

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHotkeyManager returns an empty HotkeyManager.
func NewHotkeyManager() *HotkeyManager {
	return &HotkeyManager{handlers: map[string]HotkeyHandler{}}
}

// Register binds key (case-insensitive) to handler.
func (m *HotkeyManager) Register(key string, handler HotkeyHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[strings.ToLower(key)] = handler
}

// Start begins reading stdin in a background goroutine. Typing ":quit"
// or ":exit" stops the loop; Stop also stops it.
func (m *HotkeyManager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.listenLoop(loopCtx)
}

// Stop cancels the listen loop and waits for it to exit.
func (m *HotkeyManager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *HotkeyManager) listenLoop(ctx context.Context) {
	defer close(m.done)

	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			fmt.Print("[Hotkey] Enter command (*, :calendar, :quit): ")
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimSpace(line)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			key := strings.ToLower(line)
			if key == ":quit" || key == ":exit" {
				return
			}

			m.mu.Lock()
			handler := m.handlers[key]
			m.mu.Unlock()

			if handler == nil {
				fmt.Printf("[Hotkey] No handler for %s\n", line)
				continue
			}
			if err := handler(ctx); err != nil {
				log.Warn("hotkey handler failed", "key", key, "error", err)
			}
		}
	}
}
