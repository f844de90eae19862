package agent

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"designdesk/internal/domain"
	"designdesk/internal/infra"
	"designdesk/internal/providers/oracle"
)

func testLogger() *infra.Logger {
	logger := infra.Logger(zerolog.New(io.Discard))
	return &logger
}

type mockOracle struct {
	completeText string
	completeErr  error
	completeReqs []oracle.CompletionRequest

	classification *oracle.Classification
	classifyErr    error

	fields     map[string]string
	extractErr error
}

func (m *mockOracle) Complete(_ context.Context, req oracle.CompletionRequest) (string, error) {
	m.completeReqs = append(m.completeReqs, req)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.completeText, nil
}

func (m *mockOracle) Classify(_ context.Context, _ oracle.ClassifyRequest) (*oracle.Classification, error) {
	if m.classifyErr != nil {
		return nil, m.classifyErr
	}
	return m.classification, nil
}

func (m *mockOracle) ExtractFields(_ context.Context, _ oracle.ExtractRequest) (map[string]string, error) {
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.fields, nil
}

type mockGuidance struct {
	snippets []string
	err      error
	calls    int
	lastQ    string
	lastCat  string
}

func (m *mockGuidance) Search(_ context.Context, query, category string, _ int) ([]string, error) {
	m.calls++
	m.lastQ = query
	m.lastCat = category
	if m.err != nil {
		return nil, m.err
	}
	return m.snippets, nil
}

type mockRequests struct {
	domain.RequestRepository

	byID    *domain.Request
	byIDErr error

	list    []domain.Request
	listErr error

	updated    *domain.Request
	updateErr  error
	updateID   int64
	updateArgs [2]string

	cancelled    *domain.Request
	cancelErr    error
	cancelID     int64
	cancelReason string
	writes       int
}

func (m *mockRequests) GetByID(_ context.Context, _ int64) (*domain.Request, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	return m.byID, nil
}

func (m *mockRequests) ListByRequester(_ context.Context, _ int64, _ domain.Status, _ int) ([]domain.Request, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockRequests) UpdateField(_ context.Context, id int64, field, value string) (*domain.Request, error) {
	m.writes++
	m.updateID = id
	m.updateArgs = [2]string{field, value}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updated, nil
}

func (m *mockRequests) Cancel(_ context.Context, id int64, reason string) (*domain.Request, error) {
	m.writes++
	m.cancelID = id
	m.cancelReason = reason
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	return m.cancelled, nil
}
