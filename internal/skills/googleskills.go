package skills

import "context"

// CalendarEvent is what the calendar skill extracts from a natural
// language request before creating it.
type CalendarEvent struct {
	Title       string
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Description string
}

// EmailDraft is what the mail skill extracts before sending.
type EmailDraft struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

// CalendarSkill is the external Google Calendar collaborator. A real
// implementation talks to the Calendar API; this module only defines
// the contract and a deterministic mock for tests.
type CalendarSkill interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (map[string]any, error)
	SummarizeDay(ctx context.Context) (map[string]any, error)
}

// GmailSkill is the external Gmail collaborator.
type GmailSkill interface {
	SendEmail(ctx context.Context, draft EmailDraft) (map[string]any, error)
	SummarizeInbox(ctx context.Context) (map[string]any, error)
}

// DriveSkill is the external Google Drive collaborator.
type DriveSkill interface {
	Search(ctx context.Context, query string) (map[string]any, error)
	ListRecentFiles(ctx context.Context) (map[string]any, error)
}

// MockCalendarSkill returns canned results without calling any API.
type MockCalendarSkill struct {
	Events []map[string]any
}

func (m *MockCalendarSkill) CreateEvent(ctx context.Context, event CalendarEvent) (map[string]any, error) {
	return map[string]any{"status": "submitted", "title": event.Title}, nil
}

func (m *MockCalendarSkill) SummarizeDay(ctx context.Context) (map[string]any, error) {
	return map[string]any{"events": m.Events}, nil
}

// MockGmailSkill returns canned results without calling any API.
type MockGmailSkill struct {
	Messages []map[string]any
}

func (m *MockGmailSkill) SendEmail(ctx context.Context, draft EmailDraft) (map[string]any, error) {
	return map[string]any{"status": "sent", "to": draft.To}, nil
}

func (m *MockGmailSkill) SummarizeInbox(ctx context.Context) (map[string]any, error) {
	return map[string]any{"messages": m.Messages}, nil
}

// MockDriveSkill returns canned results without calling any API.
type MockDriveSkill struct {
	Files []map[string]any
}

func (m *MockDriveSkill) Search(ctx context.Context, query string) (map[string]any, error) {
	return map[string]any{"files": m.Files, "query": query}, nil
}

func (m *MockDriveSkill) ListRecentFiles(ctx context.Context) (map[string]any, error) {
	return map[string]any{"files": m.Files}, nil
}
