package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/user/moviereview/internal/model"
	"github.com/user/moviereview/internal/provider"
	"github.com/user/moviereview/internal/repository"
)

// memClock 单调递增的时间，保证 created_at 可排序
type memClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *memClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c.now = c.now.Add(time.Second)
	return c.now
}

// memMovies 内存电影存储
type memMovies struct {
	mu     sync.Mutex
	clock  memClock
	byID   map[string]*model.Movie
	order  []string
	upsert func(m *model.Movie) error // 注入 upsert 错误
}

func newMemMovies() *memMovies {
	return &memMovies{byID: map[string]*model.Movie{}}
}

func (s *memMovies) add(m model.Movie) *model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.clock.next()
	}
	m.UpdatedAt = m.CreatedAt
	s.byID[m.ID] = &m
	s.order = append(s.order, m.ID)
	cp := m
	return &cp
}

func (s *memMovies) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *memMovies) FindByID(ctx context.Context, id string) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *memMovies) FindByExternalID(ctx context.Context, externalID int64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findExternal(externalID), nil
}

func (s *memMovies) findExternal(externalID int64) *model.Movie {
	for _, id := range s.order {
		m := s.byID[id]
		if m.ExternalAPIID != nil && *m.ExternalAPIID == externalID {
			cp := *m
			return &cp
		}
	}
	return nil
}

func (s *memMovies) FindByTitle(ctx context.Context, title string) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if m := s.byID[id]; m.Title == title {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memMovies) List(ctx context.Context, q model.MovieQuery) ([]model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Movie
	for _, id := range s.order {
		m := s.byID[id]
		if q.Search != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, *m)
	}

	if q.OrderBy == model.OrderReleaseDesc {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].ReleaseDate, out[j].ReleaseDate
			if a == nil {
				return false
			}
			return b == nil || a.After(*b)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	limit := q.Limit
	if limit <= 0 || limit > repository.MaxMovieQuery {
		limit = repository.MaxMovieQuery
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memMovies) Count(ctx context.Context) (int64, error) {
	return int64(s.len()), nil
}

func (s *memMovies) Upsert(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	if s.upsert != nil {
		if err := s.upsert(movie); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if existing := s.findExternal(*movie.ExternalAPIID); existing != nil {
		m := s.byID[existing.ID]
		m.Title = movie.Title
		m.Synopsis = movie.Synopsis
		m.PosterURL = movie.PosterURL
		m.ReleaseDate = movie.ReleaseDate
		m.Genres = movie.Genres
		m.Actors = movie.Actors
		m.UpdatedAt = s.clock.next()
		cp := *m
		s.mu.Unlock()
		return &cp, nil
	}
	s.mu.Unlock()

	return s.add(*movie), nil
}

// memUsers 内存用户存储，密码以明文前缀保存
type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*model.User{}}
}

func (s *memUsers) Create(ctx context.Context, email, username, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return nil, repository.ErrDuplicateKey
		}
	}
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: "plain:" + password,
		Role:         model.RoleUser,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *memUsers) find(match func(u *model.User) bool) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (s *memUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Username == username }), nil
}

func (s *memUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (s *memUsers) CheckPassword(user *model.User, password string) bool {
	return user.PasswordHash == "plain:"+password
}

func (s *memUsers) UpdateProfile(ctx context.Context, userID string, username, avatarURL *string, newPassword string) (*model.User, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	if !ok {
		s.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if username != nil {
		u.Username = *username
	}
	if avatarURL != nil {
		u.AvatarURL = avatarURL
	}
	if newPassword != "" {
		u.PasswordHash = "plain:" + newPassword
	}
	s.mu.Unlock()
	return s.FindByID(ctx, userID)
}

func (s *memUsers) role(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u.Role
	}
	return ""
}

func (s *memUsers) setRole(id, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].Role = role
}

// memReviews 内存评论存储，角色从 memUsers 实时读取
type memReviews struct {
	mu      sync.Mutex
	clock   memClock
	users   *memUsers
	movies  *memMovies
	reviews []*model.Review
}

func newMemReviews(users *memUsers, movies *memMovies) *memReviews {
	return &memReviews{users: users, movies: movies}
}

func (s *memReviews) FindByUserAndMovie(ctx context.Context, userID, movieID string) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.UserID == userID && r.MovieID == movieID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memReviews) newestFirst(match func(r *model.Review) bool) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Review
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if match(s.reviews[i]) {
			out = append(out, *s.reviews[i])
		}
	}
	return out
}

func (s *memReviews) ListByMovie(ctx context.Context, movieID string) ([]model.Review, error) {
	out := s.newestFirst(func(r *model.Review) bool { return r.MovieID == movieID })
	for i := range out {
		if u, _ := s.users.FindByID(ctx, out[i].UserID); u != nil {
			id := model.IdentityOf(u)
			out[i].User = &id
		}
	}
	return out, nil
}

func (s *memReviews) ListByUser(ctx context.Context, userID string) ([]model.Review, error) {
	out := s.newestFirst(func(r *model.Review) bool { return r.UserID == userID })
	for i := range out {
		if m, _ := s.movies.FindByID(ctx, out[i].MovieID); m != nil {
			out[i].Movie = &model.MovieSummary{ID: m.ID, Title: m.Title, PosterURL: m.PosterURL}
		}
	}
	return out, nil
}

func (s *memReviews) ListScoresByMovie(ctx context.Context, movieID string) ([]model.ReviewScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ReviewScore
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			out = append(out, model.ReviewScore{Score: r.Score, Role: s.users.role(r.UserID)})
		}
	}
	return out, nil
}

func (s *memReviews) CreateWithPromotion(ctx context.Context, review *model.Review, threshold int) (int64, bool, error) {
	s.mu.Lock()
	var total int64
	for _, r := range s.reviews {
		if r.UserID == review.UserID && r.MovieID == review.MovieID {
			s.mu.Unlock()
			return 0, false, repository.ErrDuplicateKey
		}
		if r.UserID == review.UserID {
			total++
		}
	}
	review.ID = uuid.NewString()
	review.CreatedAt = s.clock.next()
	review.UpdatedAt = review.CreatedAt
	cp := *review
	s.reviews = append(s.reviews, &cp)
	total++
	s.mu.Unlock()

	promoted := false
	if total >= int64(threshold) && s.users.role(review.UserID) != model.RoleCritic {
		s.users.setRole(review.UserID, model.RoleCritic)
		promoted = true
	}
	if u, _ := s.users.FindByID(ctx, review.UserID); u != nil {
		id := model.IdentityOf(u)
		review.User = &id
	}
	return total, promoted, nil
}

func (s *memReviews) owned(userID, reviewID string) (*model.Review, error) {
	for _, r := range s.reviews {
		if r.ID == reviewID {
			if r.UserID != userID {
				return nil, repository.ErrForbidden
			}
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memReviews) Update(ctx context.Context, userID, reviewID string, patch model.ReviewPatch) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.owned(userID, reviewID)
	if err != nil {
		return nil, err
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	if patch.CommentText != nil {
		if *patch.CommentText == "" {
			r.CommentText = nil
		} else {
			c := *patch.CommentText
			r.CommentText = &c
		}
	}
	cp := *r
	return &cp, nil
}

func (s *memReviews) Delete(ctx context.Context, userID, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.owned(userID, reviewID)
	if err != nil {
		return err
	}
	for i, x := range s.reviews {
		if x == r {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			break
		}
	}
	return nil
}

// fakeProvider 可控的外部数据源
type fakeProvider struct {
	name          string
	trending      []provider.NormalizedMovie
	byID          map[string]provider.NormalizedMovie
	trendingCalls atomic.Int32
	findCalls     atomic.Int32
	lastFindID    atomic.Value
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FindByID(ctx context.Context, id string) *provider.NormalizedMovie {
	p.findCalls.Add(1)
	p.lastFindID.Store(id)
	if m, ok := p.byID[id]; ok {
		return &m
	}
	return nil
}

func (p *fakeProvider) Search(ctx context.Context, query string) []provider.NormalizedMovie {
	return []provider.NormalizedMovie{}
}

func (p *fakeProvider) Trending(ctx context.Context) []provider.NormalizedMovie {
	p.trendingCalls.Add(1)
	out := make([]provider.NormalizedMovie, len(p.trending))
	copy(out, p.trending)
	return out
}

func ext(n int64) *int64 { return &n }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func normalized(source string, externalID int64, title string) provider.NormalizedMovie {
	return provider.NormalizedMovie{
		Source:     source,
		ExternalID: ext(externalID),
		Title:      title,
		Genres:     []string{"Drama"},
		Actors:     []string{},
	}
}

func batch(source string, from, n int) []provider.NormalizedMovie {
	out := make([]provider.NormalizedMovie, 0, n)
	for i := 0; i < n; i++ {
		id := int64(from + i)
		out = append(out, normalized(source, id, fmt.Sprintf("%s movie %d", source, id)))
	}
	return out
}
