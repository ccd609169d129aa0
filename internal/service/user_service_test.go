package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/moviereview/internal/model"
)

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	movies := newMemMovies()
	svc := NewUserService(users, newMemReviews(users, movies))

	u, _ := users.Create(ctx, "m@example.com", "mia", "secret1")
	users.Create(ctx, "n@example.com", "noah", "secret1")

	tests := []struct {
		name    string
		req     ProfileUpdate
		wantErr error
		invalid bool
	}{
		{name: "nothing to update", req: ProfileUpdate{}, invalid: true},
		{name: "blank username", req: ProfileUpdate{Username: strPtr("  ")}, invalid: true},
		{name: "taken username", req: ProfileUpdate{Username: strPtr("noah")}, wantErr: ErrUsernameTaken},
		{name: "new password without current", req: ProfileUpdate{NewPassword: "newsecret"}, invalid: true},
		{name: "short new password", req: ProfileUpdate{CurrentPassword: "secret1", NewPassword: "abc"}, invalid: true},
		{name: "wrong current password", req: ProfileUpdate{CurrentPassword: "nope", NewPassword: "newsecret"}, invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, u.ID, tt.req)
			if tt.invalid && !IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{
		Username:        strPtr(" mia2 "),
		AvatarURL:       strPtr("https://img.example/mia.png"),
		CurrentPassword: "secret1",
		NewPassword:     "newsecret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Username != "mia2" || updated.AvatarURL == nil {
		t.Errorf("profile not updated: %+v", updated)
	}

	auth := NewAuthService(users, "s", time.Hour)
	if _, err := auth.Login(ctx, "m@example.com", "newsecret"); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	// 保持原用户名不算冲突
	if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Username: strPtr("mia2")}); err != nil {
		t.Errorf("same username: %v", err)
	}
}

func TestMyReviewsCarryMovieSummary(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	movies := newMemMovies()
	reviews := newMemReviews(users, movies)
	svc := NewUserService(users, reviews)
	reviewSvc := NewReviewService(reviews, movies)

	u, _ := users.Create(ctx, "o@example.com", "olga", "secret1")
	first := movies.add(model.Movie{Title: "First", PosterURL: strPtr("p1")})
	second := movies.add(model.Movie{Title: "Second"})
	for _, m := range []*model.Movie{first, second} {
		if _, err := reviewSvc.Create(ctx, u.ID, m.ID, 7, nil); err != nil {
			t.Fatal(err)
		}
	}

	list, err := svc.MyReviews(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Movie == nil || list[0].Movie.Title != "Second" || list[1].Movie.Title != "First" {
		t.Errorf("unexpected reviews: %+v", list)
	}

	if _, err := svc.Profile(ctx, "0f8fad5b-d9cb-469f-a165-70867728950e"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing profile: %v", err)
	}
}
