package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agentcore/runtime/pkg/models"
)

type stubRegistryTool struct {
	name string
}

func (t *stubRegistryTool) Name() string            { return t.name }
func (t *stubRegistryTool) Description() string     { return "stub" }
func (t *stubRegistryTool) Schema() json.RawMessage { return json.RawMessage(`{}`) }
func (t *stubRegistryTool) Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error) {
	return &ToolResult{Content: "stub-result"}, nil
}

func TestToolRegistry_RegisterGetUnregister(t *testing.T) {
	r := NewToolRegistry()

	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected Get on an empty registry to return ok=false")
	}

	r.Register(&stubRegistryTool{name: "search"})
	tool, ok := r.Get("search")
	if !ok {
		t.Fatal("expected search tool to be registered")
	}
	if tool.Name() != "search" {
		t.Errorf("Name() = %q, want search", tool.Name())
	}

	r.Unregister("search")
	if _, ok := r.Get("search"); ok {
		t.Error("expected search tool to be gone after Unregister")
	}
}

func TestToolRegistry_RegisterReplacesSameName(t *testing.T) {
	r := NewToolRegistry()
	first := &stubRegistryTool{name: "dup"}
	second := &stubRegistryTool{name: "dup"}

	r.Register(first)
	r.Register(second)

	tool, _ := r.Get("dup")
	if tool != Tool(second) {
		t.Error("expected the second registration to replace the first")
	}
	if len(r.AsLLMTools()) != 1 {
		t.Errorf("AsLLMTools() len = %d, want 1 (no duplicate entries)", len(r.AsLLMTools()))
	}
}

func TestToolRegistry_Execute_Success(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubRegistryTool{name: "echo"})

	result, err := r.Execute(context.Background(), "echo", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Errorf("expected success, got error result: %+v", result)
	}
	if result.Content != "stub-result" {
		t.Errorf("Content = %q, want stub-result", result.Content)
	}
}

func TestToolRegistry_Execute_ToolNotFound(t *testing.T) {
	r := NewToolRegistry()
	result, err := r.Execute(context.Background(), "nonexistent", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an unknown tool")
	}
}

func TestToolRegistry_Execute_NameTooLong(t *testing.T) {
	r := NewToolRegistry()
	longName := strings.Repeat("a", MaxToolNameLength+1)

	result, err := r.Execute(context.Background(), longName, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for an overlong tool name")
	}
}

func TestToolRegistry_Execute_ParamsTooLarge(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubRegistryTool{name: "echo"})
	oversized := make(json.RawMessage, MaxToolParamsSize+1)

	result, err := r.Execute(context.Background(), "echo", oversized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for oversized parameters")
	}
}

func TestToolRegistry_AsLLMTools(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&stubRegistryTool{name: "a"})
	r.Register(&stubRegistryTool{name: "b"})

	tools := r.AsLLMTools()
	if len(tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(tools))
	}
	names := map[string]bool{}
	for _, tl := range tools {
		names[tl.Name()] = true
	}
	if !names["a"] || !names["b"] {
		t.Errorf("expected both a and b in %v", names)
	}
}

func TestMatchToolPattern(t *testing.T) {
	cases := []struct {
		pattern  string
		toolName string
		want     bool
	}{
		{"*", "anything", true},
		{"mcp:*", "mcp:search", true},
		{"mcp:*", "search", false},
		{"search_*", "search_web", true},
		{"search_*", "websearch", false},
		{"exact_tool", "exact_tool", true},
		{"exact_tool", "other_tool", false},
		{"", "tool", false},
		{"pattern", "", false},
	}
	for _, c := range cases {
		if got := matchToolPattern(c.pattern, c.toolName); got != c.want {
			t.Errorf("matchToolPattern(%q, %q) = %v, want %v", c.pattern, c.toolName, got, c.want)
		}
	}
}

func TestMatchesToolPatterns_CaseInsensitive(t *testing.T) {
	patterns := []string{"Dangerous_*"}
	if !matchesToolPatterns(patterns, "dangerous_delete") {
		t.Error("expected case-insensitive pattern matching to succeed")
	}
	if matchesToolPatterns(patterns, "safe_tool") {
		t.Error("expected no match for an unrelated tool name")
	}
}

func TestMatchesToolPatterns_EmptyPatternsNeverMatch(t *testing.T) {
	if matchesToolPatterns(nil, "anything") {
		t.Error("expected no patterns to never match")
	}
}

func TestGuardToolResults_InactiveGuardPassesThrough(t *testing.T) {
	calls := []models.ToolCall{{ID: "c1", Name: "tool_a"}}
	results := []models.ToolResult{{ToolCallID: "c1", Content: "secret-looking-but-unguarded"}}

	out := guardToolResults(ToolResultGuard{}, calls, results)
	if out[0].Content != results[0].Content {
		t.Errorf("expected an inactive guard to pass results through unchanged, got %q", out[0].Content)
	}
}

func TestLockSession_SerializesConcurrentRuns(t *testing.T) {
	rt := NewRuntime(&scriptedProvider{}, newFakeSessionStore())

	unlock1 := rt.lockSession("sess-a")
	attempted := make(chan struct{})
	released := make(chan struct{})
	go func() {
		close(attempted)
		unlock2 := rt.lockSession("sess-a")
		close(released)
		unlock2()
	}()
	<-attempted
	time.Sleep(20 * time.Millisecond)

	select {
	case <-released:
		t.Fatal("second lockSession call for the same session should block until the first is released")
	default:
	}

	unlock1()
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("second lockSession call never unblocked after the first was released")
	}
}

func TestLockSession_EmptySessionIDIsNoop(t *testing.T) {
	rt := NewRuntime(&scriptedProvider{}, newFakeSessionStore())
	unlock := rt.lockSession("")
	unlock() // must not panic
}
