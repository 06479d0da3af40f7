package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/smartquizzer/quizzer-backend/internal/event"
	"github.com/smartquizzer/quizzer-backend/internal/model"
	"github.com/smartquizzer/quizzer-backend/internal/repository"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repository.ErrDuplicateUser
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = epoch
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeContents struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.Content
}

func newFakeContents() *fakeContents {
	return &fakeContents{byID: make(map[int64]*model.Content)}
}

// put stores c under its own ID.
func (f *fakeContents) put(c model.Content) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[c.ID] = &c
	f.nextID = max(f.nextID, c.ID)
}

func (f *fakeContents) Create(_ context.Context, c *model.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = epoch
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeContents) GetByID(_ context.Context, id int64) (*model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContents) ListByUser(_ context.Context, userID int64, skip, limit int) ([]model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Content
	for id := f.nextID; id > 0; id-- {
		if c, ok := f.byID[id]; ok && c.UserID == userID {
			out = append(out, *c)
		}
	}
	if skip >= len(out) {
		return []model.Content{}, nil
	}
	return out[skip:min(skip+limit, len(out))], nil
}

func (f *fakeContents) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeQuestions struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.Question
}

func newFakeQuestions() *fakeQuestions {
	return &fakeQuestions{byID: make(map[int64]model.Question)}
}

func (f *fakeQuestions) CreateBatch(_ context.Context, questions []model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range questions {
		f.nextID++
		questions[i].ID = f.nextID
		questions[i].CreatedAt = epoch
		f.byID[f.nextID] = questions[i]
	}
	return nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id int64) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &q, nil
}

func (f *fakeQuestions) GetByIDs(_ context.Context, ids []int64) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := f.byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeQuizzes struct {
	mu        sync.Mutex
	nextID    int64
	seq       int
	sessions  map[int64]*model.QuizSession
	responses map[int64][]model.Response
}

func newFakeQuizzes() *fakeQuizzes {
	return &fakeQuizzes{
		sessions:  make(map[int64]*model.QuizSession),
		responses: make(map[int64][]model.Response),
	}
}

func (f *fakeQuizzes) tick() time.Time {
	f.seq++
	return epoch.Add(time.Duration(f.seq) * time.Second)
}

func (f *fakeQuizzes) Create(_ context.Context, s *model.QuizSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	s.Status = model.SessionStatusInProgress
	s.StartedAt = f.tick()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeQuizzes) GetByID(_ context.Context, id int64) (*model.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeQuizzes) ListByUser(_ context.Context, userID int64, skip, limit int) ([]model.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizSession
	for id := f.nextID; id > 0; id-- {
		if s, ok := f.sessions[id]; ok && s.UserID == userID {
			out = append(out, *s)
		}
	}
	if skip >= len(out) {
		return []model.QuizSession{}, nil
	}
	return out[skip:min(skip+limit, len(out))], nil
}

func (f *fakeQuizzes) ListCompletedByUser(_ context.Context, userID int64) ([]model.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizSession
	for id := int64(1); id <= f.nextID; id++ {
		if s, ok := f.sessions[id]; ok && s.UserID == userID && s.Status == model.SessionStatusCompleted {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeQuizzes) RecordResponse(_ context.Context, resp *model.Response, check func(*model.QuizSession) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[resp.QuizID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *s
	if err := check(&cp); err != nil {
		return err
	}
	for _, existing := range f.responses[resp.QuizID] {
		if existing.QuestionID == resp.QuestionID {
			return repository.ErrDuplicateResponse
		}
	}
	resp.ID = int64(f.seq + 1)
	resp.CreatedAt = f.tick()
	f.responses[resp.QuizID] = append(f.responses[resp.QuizID], *resp)
	if resp.IsCorrect {
		s.CorrectAnswers++
	}
	return nil
}

func (f *fakeQuizzes) RecentResponses(_ context.Context, quizID int64, limit int) ([]model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.responses[quizID]
	out := make([]model.Response, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakeQuizzes) Complete(_ context.Context, id int64, finalize func(*model.QuizSession, []model.Response) (model.Completion, error)) ([]model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	responses := append([]model.Response(nil), f.responses[id]...)
	c, err := finalize(&cp, responses)
	if err != nil {
		return nil, err
	}
	score := c.Score
	total := c.TotalTimeSeconds
	completedAt := f.tick()
	s.Status = model.SessionStatusCompleted
	s.Score = &score
	s.CorrectAnswers = c.CorrectAnswers
	s.TotalTimeSeconds = &total
	s.CompletedAt = &completedAt
	return responses, nil
}

func (f *fakeQuizzes) Abandon(_ context.Context, id int64, check func(*model.QuizSession) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *s
	if err := check(&cp); err != nil {
		return err
	}
	s.Status = model.SessionStatusAbandoned
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.ttls[key] = ttl
}

func (c *fakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *fakeCache) Exists(_ context.Context, key string) bool {
	return c.has(key)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	candidates []model.CandidateQuestion
	err        error
	lastText   string
}

func (g *fakeGenerator) Generate(_ context.Context, content string, _ int, _ model.Difficulty, _ []model.QuestionType) ([]model.CandidateQuestion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastText = content
	if g.err != nil {
		return nil, g.err
	}
	return g.candidates, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeScheduler struct {
	mu     sync.Mutex
	events []*event.QuizCompleted
}

func (s *fakeScheduler) Schedule(e *event.QuizCompleted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
