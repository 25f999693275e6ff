package core

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type queryCall struct {
	Query  string
	Params map[string]interface{}
}

// MockDriver records every query. FailOn makes specific queries fail.
type MockDriver struct {
	mu     sync.Mutex
	Calls  []queryCall
	FailOn map[string]error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, queryCall{Query: query, Params: params})
	if err := m.FailOn[query]; err != nil {
		return neo4j.EagerResult{}, err
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error { return nil }

func (m *MockDriver) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Query
	}
	return out
}

// MockLLM answers from Responses in order, then repeats Response.
type MockLLM struct {
	Response  string
	Responses []string
	Err       error
	Prompts   []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		return next, nil
	}
	return m.Response, nil
}
