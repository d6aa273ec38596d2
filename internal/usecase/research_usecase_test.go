package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"github.com/masykurm/talent-scout/internal/service"
	"github.com/masykurm/talent-scout/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeResearchStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]model.Research
	statusLog []string
	findErr   error
}

func newFakeResearchStore() *fakeResearchStore {
	return &fakeResearchStore{records: map[uuid.UUID]model.Research{}}
}

func (s *fakeResearchStore) Create(r *model.Research) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.records[r.ID] = *r
	return nil
}

func (s *fakeResearchStore) Update(r *model.Research) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = *r
	s.statusLog = append(s.statusLog, r.Status)
	return nil
}

func (s *fakeResearchStore) FindByID(id string) (*model.Research, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	r, ok := s.records[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := r
	return &copied, nil
}

func (s *fakeResearchStore) FindOwnedByID(id string, _ uuid.UUID) (*model.Research, error) {
	return s.FindByID(id)
}

func (s *fakeResearchStore) ListByUser(userID uuid.UUID, _, _ int) ([]model.Research, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Research
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeResearchStore) get(id uuid.UUID) model.Research {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func (s *fakeResearchStore) statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statusLog...)
}

type fakeCandidateStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]model.Candidate
}

func newFakeCandidateStore(candidates ...model.Candidate) *fakeCandidateStore {
	s := &fakeCandidateStore{candidates: map[uuid.UUID]model.Candidate{}}
	for _, c := range candidates {
		s.candidates[c.ID] = c
	}
	return s
}

func (s *fakeCandidateStore) FindByID(id string) (*model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	c, ok := s.candidates[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := c
	return &copied, nil
}

func (s *fakeCandidateStore) Update(c *model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[c.ID] = *c
	return nil
}

func (s *fakeCandidateStore) get(id uuid.UUID) model.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates[id]
}

type stubResearchClient struct {
	response string
	err      error
	panics   bool
	calls    int
}

func (c *stubResearchClient) Research(_ context.Context, _, _, _, _ string) (string, error) {
	c.calls++
	if c.panics {
		panic("boom")
	}
	return c.response, c.err
}

type stubEmbeddingClient struct {
	stubResearchClient
	values []float32
	embErr error
}

func (c *stubEmbeddingClient) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return c.values, c.embErr
}

type fixture struct {
	uc         *ResearchUsecase
	research   *fakeResearchStore
	candidates *fakeCandidateStore
	client     *stubResearchClient
}

func newFixture(client *stubResearchClient, gemini EmbeddingClient, candidates ...model.Candidate) *fixture {
	research := newFakeResearchStore()
	candidateStore := newFakeCandidateStore(candidates...)
	taskStores := func() TaskStores {
		return TaskStores{Research: research, Candidates: candidateStore}
	}
	uc := NewResearchUsecase(
		research, candidateStore, nil, nil,
		taskStores, client, gemini,
		worker.NewPool(1, zap.NewNop()), zap.NewNop(),
	)
	return &fixture{uc: uc, research: research, candidates: candidateStore, client: client}
}

func pendingRecord(f *fixture, candidateID uuid.UUID) (*model.Research, researchJob) {
	record := &model.Research{
		ID:          uuid.New(),
		CandidateID: candidateID,
		UserID:      uuid.New(),
		Prompt:      "focus on backend work",
		Model:       "sonar-deep-research",
		Status:      model.ResearchStatusPending,
	}
	_ = f.research.Create(record)
	job := researchJob{
		RecordID:    record.ID,
		CandidateID: candidateID,
		ProfileURL:  "https://linkedin.com/in/jane-doe",
		Prompt:      record.Prompt,
		Model:       record.Model,
	}
	return record, job
}

func TestRunResearchCompletes(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New(), ProfileURL: "https://linkedin.com/in/jane-doe"}
	response := "```json\n{\"candidate_name\":\"Jane Doe\",\"overall_score\":87,\"summary\":\"Strong fit\",\"full_report\":\"...\"}\n```"
	f := newFixture(&stubResearchClient{response: response}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusCompleted, got.Status)
	require.NotNil(t, got.CandidateName)
	assert.Equal(t, "Jane Doe", *got.CandidateName)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 87, *got.OverallScore)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Strong fit", *got.Summary)
	require.NotNil(t, got.RawResponse)
	assert.Contains(t, *got.RawResponse, `"candidate_name":"Jane Doe"`)

	assert.Equal(t, []string{model.ResearchStatusInProgress, model.ResearchStatusCompleted}, f.research.statuses())

	updatedCandidate := f.candidates.get(candidate.ID)
	require.NotNil(t, updatedCandidate.Name, "the researched name propagates to the candidate")
	assert.Equal(t, "Jane Doe", *updatedCandidate.Name)
}

func TestRunResearchMissingFullReport(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	f := newFixture(&stubResearchClient{
		response: `{"candidate_name":"Jane Doe","overall_score":70,"summary":"Solid"}`,
	}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusCompleted, got.Status)
	assert.Nil(t, got.FullReport, "a missing full_report is a valid omission")
}

func TestRunResearchUpstreamFailure(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	client := &stubResearchClient{err: fmt.Errorf("dial tcp: %w", service.ErrUpstreamUnavailable)}
	f := newFixture(client, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusFailed, got.Status)
	require.NotNil(t, got.Summary)
	assert.Contains(t, *got.Summary, "could not be reached")
	assert.Nil(t, got.RawResponse, "no response was received, nothing to retain")

	assert.Equal(t, []string{model.ResearchStatusInProgress, model.ResearchStatusFailed}, f.research.statuses())
}

func TestRunResearchMalformedResponse(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	raw := "Sorry, I cannot process this request."
	f := newFixture(&stubResearchClient{response: raw}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusFailed, got.Status)
	require.NotNil(t, got.RawResponse)
	assert.Equal(t, raw, *got.RawResponse, "the raw text is retained verbatim on parse failure")
	require.NotNil(t, got.Summary)
	assert.Contains(t, *got.Summary, "valid JSON")
}

func TestRunResearchRecordVanished(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	f := newFixture(&stubResearchClient{response: "{}"}, nil, candidate)
	job := researchJob{RecordID: uuid.New(), CandidateID: candidate.ID}

	f.uc.runResearch(job)

	assert.Empty(t, f.research.statuses(), "a vanished record must not be mutated")
	assert.Zero(t, f.client.calls, "no upstream call is made for a vanished record")
}

func TestRunResearchSkipsTerminalRecord(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	f := newFixture(&stubResearchClient{response: "{}"}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	done := f.research.get(record.ID)
	done.Status = model.ResearchStatusCompleted
	f.research.records[record.ID] = done
	f.research.statusLog = nil

	f.uc.runResearch(job)

	assert.Empty(t, f.research.statuses(), "terminal records have no outgoing transitions")
	assert.Zero(t, f.client.calls)
}

func TestRunResearchSkipsRecordAlreadyInProgress(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	f := newFixture(&stubResearchClient{response: "{}"}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	claimed := f.research.get(record.ID)
	claimed.Status = model.ResearchStatusInProgress
	f.research.records[record.ID] = claimed
	f.research.statusLog = nil

	f.uc.runResearch(job)

	assert.Empty(t, f.research.statuses(), "only a pending record may move to in_progress")
	assert.Zero(t, f.client.calls)
}

func TestRunResearchRecoversFromPanic(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	f := newFixture(&stubResearchClient{panics: true}, nil, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusFailed, got.Status, "a panic must still end in a terminal status")
	require.NotNil(t, got.Summary)
	assert.Contains(t, *got.Summary, "internal error")
}

func TestRunResearchStoresCandidateEmbedding(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	gemini := &stubEmbeddingClient{values: []float32{0.1, 0.2, 0.3}}
	f := newFixture(&stubResearchClient{
		response: `{"candidate_name":"Jane Doe","overall_score":87,"summary":"Strong fit"}`,
	}, gemini, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusCompleted, got.Status)
	assert.Equal(t, 1, f.client.calls, "a non-gemini model keeps using the default backend")
	updated := f.candidates.get(candidate.ID)
	require.NotNil(t, updated.Embedding, "the summary embedding lands on the candidate")
}

func TestRunResearchEmbeddingFailureKeepsCompleted(t *testing.T) {
	candidate := model.Candidate{ID: uuid.New()}
	gemini := &stubEmbeddingClient{embErr: errors.New("quota exceeded")}
	f := newFixture(&stubResearchClient{
		response: `{"candidate_name":"Jane Doe","summary":"Strong fit"}`,
	}, gemini, candidate)
	record, job := pendingRecord(f, candidate.ID)

	f.uc.runResearch(job)

	got := f.research.get(record.ID)
	assert.Equal(t, model.ResearchStatusCompleted, got.Status, "embedding is best effort")
	assert.Nil(t, f.candidates.get(candidate.ID).Embedding)
}

func TestClientForSelectsBackend(t *testing.T) {
	perplexity := &stubResearchClient{}
	gemini := &stubEmbeddingClient{}
	f := newFixture(perplexity, gemini)

	assert.Same(t, gemini, f.uc.clientFor("gemini-2.5-flash"))
	assert.Same(t, perplexity, f.uc.clientFor("sonar-deep-research"))
}

type fakeProjectStore struct {
	project  *model.Project
	attached bool
}

func (s *fakeProjectStore) FindOwnedByID(id string, userID uuid.UUID) (*model.Project, error) {
	if s.project == nil || s.project.ID.String() != id || s.project.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.project
	return &copied, nil
}

func (s *fakeProjectStore) HasCandidate(_, _ uuid.UUID) (bool, error) {
	return s.attached, nil
}

type fakeSettingsStore struct {
	settings model.UserSettings
}

func (s *fakeSettingsStore) FindSettingsByUser(userID uuid.UUID) (*model.UserSettings, error) {
	copied := s.settings
	copied.UserID = userID
	return &copied, nil
}

func TestTrigger(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	candidate := model.Candidate{ID: uuid.New(), ProfileURL: "https://linkedin.com/in/jane-doe"}
	project := &model.Project{ID: uuid.New(), UserID: user.ID, Prompt: "senior backend roles"}

	newTriggerFixture := func(attached bool, settings model.UserSettings) *fixture {
		research := newFakeResearchStore()
		candidateStore := newFakeCandidateStore(candidate)
		taskStores := func() TaskStores {
			return TaskStores{Research: research, Candidates: candidateStore}
		}
		client := &stubResearchClient{response: `{"candidate_name":"Jane Doe","summary":"ok"}`}
		uc := NewResearchUsecase(
			research, candidateStore,
			&fakeProjectStore{project: project, attached: attached},
			&fakeSettingsStore{settings: settings},
			taskStores, client, nil,
			worker.NewPool(1, zap.NewNop()), zap.NewNop(),
		)
		return &fixture{uc: uc, research: research, candidates: candidateStore, client: client}
	}

	t.Run("creates a pending record with snapshots and runs it", func(t *testing.T) {
		f := newTriggerFixture(true, model.UserSettings{ResearchModel: "sonar-pro"})

		record, err := f.uc.Trigger(project.ID.String(), candidate.ID.String(), user)

		require.NoError(t, err)
		assert.Equal(t, model.ResearchStatusPending, record.Status)
		assert.Equal(t, project.Prompt, record.Prompt, "the prompt is snapshotted at creation")
		assert.Equal(t, "sonar-pro", record.Model, "the user's model preference is read at spawn time")

		f.uc.pool.Wait()
		assert.Equal(t, model.ResearchStatusCompleted, f.research.get(record.ID).Status)
	})

	t.Run("falls back to the default model", func(t *testing.T) {
		f := newTriggerFixture(true, model.UserSettings{})

		record, err := f.uc.Trigger(project.ID.String(), candidate.ID.String(), user)

		require.NoError(t, err)
		assert.Equal(t, model.DefaultResearchModel, record.Model)
		f.uc.pool.Wait()
	})

	t.Run("rejects a candidate outside the project", func(t *testing.T) {
		f := newTriggerFixture(false, model.UserSettings{})

		_, err := f.uc.Trigger(project.ID.String(), candidate.ID.String(), user)

		assert.ErrorIs(t, err, ErrCandidateNotInProject)
		assert.Empty(t, f.research.statuses())
	})

	t.Run("rejects a project the user does not own", func(t *testing.T) {
		f := newTriggerFixture(true, model.UserSettings{})
		stranger := &model.User{ID: uuid.New()}

		_, err := f.uc.Trigger(project.ID.String(), candidate.ID.String(), stranger)

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
