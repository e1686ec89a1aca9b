package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/accounthub/internal/domain/user"
)

func strPtr(s string) *string { return &s }

func TestUsersRepo_CreateAndLookups(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.NewUser{
		Username:  "sam",
		Email:     "sam@example.com",
		FirstName: strPtr("Sam"),
	}, "hash-1")

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == 0 {
		t.Fatalf("expected an assigned id")
	}

	if !created.IsActive || created.IsSuperuser {
		t.Fatalf("defaults wrong: active=%v superuser=%v", created.IsActive, created.IsSuperuser)
	}

	byID, err := r.GetByID(ctx, created.ID)
	if err != nil || byID.Username != "sam" {
		t.Fatalf("GetByID: %v %+v", err, byID)
	}

	if _, err := r.GetByUsername(ctx, "sam"); err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}

	if _, err := r.GetByEmail(ctx, "sam@example.com"); err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	if _, err := r.GetByID(ctx, 999); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_CreateDuplicate(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	if _, err := r.Create(ctx, user.NewUser{Username: "sam", Email: "sam@example.com"}, "h"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	tests := []struct {
		name string
		nu   user.NewUser
	}{
		{"same_username", user.NewUser{Username: "sam", Email: "other@example.com"}},
		{"same_email", user.NewUser{Username: "other", Email: "sam@example.com"}},
		{"both_same", user.NewUser{Username: "sam", Email: "sam@example.com"}},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Create(ctx, tt.nu, "h"); !errors.Is(err, user.ErrExists) {
				t.Fatalf("got %v, want ErrExists", err)
			}
		})
	}
}

func TestUsersRepo_GetByUsernameOrEmail(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	if _, err := r.Create(ctx, user.NewUser{Username: "sam", Email: "sam@example.com"}, "h"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := r.GetByUsernameOrEmail(ctx, "sam", "fresh@example.com"); err != nil {
		t.Fatalf("username collision not reported: %v", err)
	}

	if _, err := r.GetByUsernameOrEmail(ctx, "fresh", "sam@example.com"); err != nil {
		t.Fatalf("email collision not reported: %v", err)
	}

	if _, err := r.GetByUsernameOrEmail(ctx, "fresh", "fresh@example.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("no collision: got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_ListOrderAndPaging(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e"}

	for _, n := range names {
		if _, err := r.Create(ctx, user.NewUser{Username: n, Email: n + "@example.com"}, "h"); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}

	page, err := r.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(page) != 2 || page[0].Username != "b" || page[1].Username != "c" {
		t.Fatalf("got page %+v, want [b c]", page)
	}

	// offset past the end is an empty slice, not an error
	empty, err := r.List(ctx, 50, 10)
	if err != nil {
		t.Fatalf("List past end: %v", err)
	}

	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(empty))
	}
}

func TestUsersRepo_UpdatePatch(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.NewUser{Username: "sam", Email: "sam@example.com"}, "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := r.Update(ctx, created.ID, user.Patch{
		FirstName: strPtr("Sam"),
	})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.FirstName == nil || *updated.FirstName != "Sam" {
		t.Fatalf("first name not applied: %+v", updated)
	}

	if updated.Username != "sam" || updated.Email != "sam@example.com" {
		t.Fatalf("unset fields must stay untouched: %+v", updated)
	}

	if _, err := r.Update(ctx, 999, user.Patch{FirstName: strPtr("x")}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestUsersRepo_UpdateUniqueness(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	if _, err := r.Create(ctx, user.NewUser{Username: "sam", Email: "sam@example.com"}, "h"); err != nil {
		t.Fatalf("create: %v", err)
	}

	second, err := r.Create(ctx, user.NewUser{Username: "kim", Email: "kim@example.com"}, "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := r.Update(ctx, second.ID, user.Patch{Username: strPtr("sam")}); !errors.Is(err, user.ErrExists) {
		t.Fatalf("username collision on update: got %v, want ErrExists", err)
	}
}

func TestUsersRepo_Delete(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	created, err := r.Create(ctx, user.NewUser{Username: "sam", Email: "sam@example.com"}, "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := r.GetByID(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("row survived delete: %v", err)
	}

	if err := r.Delete(ctx, created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
