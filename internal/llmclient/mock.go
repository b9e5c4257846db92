package llmclient

import "context"

// MockTextLLM returns scripted responses in order, then repeats the
// last one. Useful for dispatcher/skill tests that need a
// deterministic TextLLM without a router running.
type MockTextLLM struct {
	Responses []string
	calls     int
	Prompts   []string
}

func (m *MockTextLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[idx], nil
}

// MockVisionLLM returns scripted action/answer responses in order.
type MockVisionLLM struct {
	ActionResponses []string
	AnswerResponse  string
	AnalyzeCalls    int
	AnswerCalls     int
	calls           int
}

func (m *MockVisionLLM) AnalyzeScreenshot(ctx context.Context, screenshot []byte, task string) (string, error) {
	m.AnalyzeCalls++
	if len(m.ActionResponses) == 0 {
		return "ACTION: complete\nREASON: nothing scripted\n", nil
	}
	idx := m.calls
	if idx >= len(m.ActionResponses) {
		idx = len(m.ActionResponses) - 1
	}
	m.calls++
	return m.ActionResponses[idx], nil
}

func (m *MockVisionLLM) AnswerQuestion(ctx context.Context, screenshot []byte, question string) (string, error) {
	m.AnswerCalls++
	return m.AnswerResponse, nil
}
